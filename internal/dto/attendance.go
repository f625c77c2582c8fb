package dto

import "attendly/internal/model"

// ── 出勤模块 DTO ──

// SaveAttendanceRequest 保存出勤记录请求
//
// 按 (SubjectID, Date) 定位已有记录；可选字段为 nil 时保留原值。
type SaveAttendanceRequest struct {
	SubjectID         string                 `json:"subjectId"  validate:"required"`
	Date              string                 `json:"date"       validate:"required"`
	Status            model.AttendanceStatus `json:"status"     validate:"required"`
	ClassCount        int                    `json:"classCount" validate:"min=1"`
	Notes             *string                `json:"notes,omitempty"`
	Assignment        *string                `json:"assignment,omitempty"`
	AssignmentDueDate *string                `json:"assignmentDueDate,omitempty"`
}

// StatsResponse 统计页数据
type StatsResponse struct {
	Overall  model.OverallStats   `json:"overall"`
	Subjects []model.SubjectStats `json:"subjects"` // 按出勤率降序
	Low      []model.SubjectStats `json:"low"`
}
