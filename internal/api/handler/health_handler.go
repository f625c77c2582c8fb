package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"attendly/internal/service"
)

// HealthHandler 健康检查
type HealthHandler struct {
	attendance service.AttendanceService
	theme      service.ThemeService
}

// NewHealthHandler 创建 HealthHandler
func NewHealthHandler(attendance service.AttendanceService, theme service.ThemeService) *HealthHandler {
	return &HealthHandler{attendance: attendance, theme: theme}
}

// Health 存活检查，附带数据加载状态
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"loading": h.attendance.IsLoading() || h.theme.IsLoading(),
	})
}
