package dto

import "attendly/internal/model"

// ── 课程模块 DTO ──

// CreateSubjectRequest 创建课程请求
type CreateSubjectRequest struct {
	Name           string   `json:"name"           validate:"required"`
	Description    string   `json:"description"`
	Color          string   `json:"color"`
	WeeklySchedule []string `json:"weeklySchedule" validate:"required,min=1,dive,required"`
}

// UpdateSubjectRequest 更新课程请求（浅合并：仅非 nil 字段生效）
type UpdateSubjectRequest struct {
	Name           *string  `json:"name"           validate:"omitnil,min=1"`
	Description    *string  `json:"description"`
	Color          *string  `json:"color"`
	WeeklySchedule []string `json:"weeklySchedule" validate:"omitnil,min=1,dive,required"`
}

// SubjectDetailResponse 课程详情（含出勤汇总）
type SubjectDetailResponse struct {
	Subject    model.Subject           `json:"subject"`
	Attendance model.SubjectAttendance `json:"attendance"`
	IsLow      bool                    `json:"isLow"`
}
