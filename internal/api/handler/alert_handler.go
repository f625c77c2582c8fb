package handler

import (
	"github.com/gin-gonic/gin"

	"attendly/config"
	"attendly/internal/dto"
	"attendly/internal/service"
	"attendly/pkg/response"
)

// AlertHandler 提醒模块 HTTP 处理器
type AlertHandler struct {
	svc service.NotificationService
	cfg config.AlertConfig
}

// NewAlertHandler 创建 AlertHandler
func NewAlertHandler(svc service.NotificationService, cfg *config.AlertConfig) *AlertHandler {
	return &AlertHandler{svc: svc, cfg: *cfg}
}

// LowAttendance 出勤率低于阈值的课程
// GET /api/v1/alerts/low-attendance
func (h *AlertHandler) LowAttendance(c *gin.Context) {
	response.OK(c, gin.H{
		"list":      h.svc.GetLowAttendanceStats(),
		"threshold": h.cfg.Threshold,
	})
}

// Deadlines 即将截止的作业
// GET /api/v1/alerts/deadlines?days=7
func (h *AlertHandler) Deadlines(c *gin.Context) {
	var q dto.DeadlineQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, response.CodeBadParams, "days 必须是 0-365 之间的整数")
		return
	}

	days := h.cfg.DefaultDays
	if q.Days != nil {
		days = *q.Days
	}

	response.OK(c, gin.H{
		"list": h.svc.GetUpcomingDeadlines(days),
		"days": days,
	})
}

// Dashboard 首页提醒：低出勤课程 + 近期截止作业
// GET /api/v1/dashboard
func (h *AlertHandler) Dashboard(c *gin.Context) {
	response.OK(c, dto.DashboardResponse{
		UpcomingDeadlines: h.svc.GetUpcomingDeadlines(h.cfg.DashboardDays),
		LowAttendance:     h.svc.GetLowAttendanceStats(),
		Days:              h.cfg.DashboardDays,
	})
}
