package handler

import (
	"github.com/gin-gonic/gin"

	"attendly/internal/dto"
	"attendly/internal/service"
	"attendly/pkg/response"
)

// ThemeHandler 主题模块 HTTP 处理器
type ThemeHandler struct {
	svc service.ThemeService
}

// NewThemeHandler 创建 ThemeHandler
func NewThemeHandler(svc service.ThemeService) *ThemeHandler {
	return &ThemeHandler{svc: svc}
}

// GetTheme 当前主题
// GET /api/v1/theme
func (h *ThemeHandler) GetTheme(c *gin.Context) {
	response.OK(c, h.svc.Get())
}

// SetTheme 设置主题
// PUT /api/v1/theme
func (h *ThemeHandler) SetTheme(c *gin.Context) {
	var req dto.ThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeBadParams, "isDark 不能为空")
		return
	}

	theme, err := h.svc.Set(c.Request.Context(), *req.IsDark)
	if err != nil {
		handleStoreError(c, err)
		return
	}

	response.OK(c, theme)
}

// ToggleTheme 切换深浅色
// POST /api/v1/theme/toggle
func (h *ThemeHandler) ToggleTheme(c *gin.Context) {
	theme, err := h.svc.Toggle(c.Request.Context())
	if err != nil {
		handleStoreError(c, err)
		return
	}

	response.OK(c, theme)
}
