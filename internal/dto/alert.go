package dto

import "attendly/internal/model"

// ── 提醒模块 DTO ──

// DeadlineQuery 截止日期查询参数
type DeadlineQuery struct {
	Days *int `form:"days" binding:"omitempty,min=0,max=365"`
}

// DashboardResponse 首页提醒
type DashboardResponse struct {
	UpcomingDeadlines []model.Assignment   `json:"upcomingDeadlines"`
	LowAttendance     []model.SubjectStats `json:"lowAttendance"`
	Days              int                  `json:"days"`
}

// ThemeRequest 设置主题请求
type ThemeRequest struct {
	IsDark *bool `json:"isDark" binding:"required"`
}
