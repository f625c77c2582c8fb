package dto

import "attendly/internal/model"

// ── 课表导入 DTO ──

// ImportICSRequest 通过链接导入课表（支持 http(s):// 与 webcal://）
type ImportICSRequest struct {
	URL string `json:"url" form:"url" binding:"required"`
}

// TimetableImportResponse 课表导入结果
type TimetableImportResponse struct {
	Created []model.Subject `json:"created"`
	Skipped []string        `json:"skipped"` // 已存在的课程名
}
