package handler

import (
	"github.com/gin-gonic/gin"

	"attendly/internal/dto"
	"attendly/internal/service"
	"attendly/pkg/response"
)

// AttendanceHandler 出勤模块 HTTP 处理器
type AttendanceHandler struct {
	svc       service.AttendanceService
	threshold int
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(svc service.AttendanceService, threshold int) *AttendanceHandler {
	return &AttendanceHandler{svc: svc, threshold: threshold}
}

// SaveAttendance 保存出勤记录（同一课程同一天覆盖）
// PUT /api/v1/attendance
func (h *AttendanceHandler) SaveAttendance(c *gin.Context) {
	var req dto.SaveAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeBadParams, "参数格式错误")
		return
	}

	record, err := h.svc.SaveAttendance(c.Request.Context(), &req)
	if err != nil {
		handleStoreError(c, err)
		return
	}

	response.OK(c, record)
}

// DeleteAttendance 删除出勤记录
// DELETE /api/v1/attendance/:id
func (h *AttendanceHandler) DeleteAttendance(c *gin.Context) {
	if err := h.svc.DeleteAttendance(c.Request.Context(), c.Param("id")); err != nil {
		handleStoreError(c, err)
		return
	}

	response.OK(c, nil)
}

// GetStats 统计页：总体汇总 + 按出勤率降序的课程列表
// GET /api/v1/stats
func (h *AttendanceHandler) GetStats(c *gin.Context) {
	stats := h.svc.SubjectStats()
	response.OK(c, dto.StatsResponse{
		Overall:  h.svc.OverallStats(),
		Subjects: service.RankByPercentage(stats),
		Low:      service.FilterLowAttendance(stats, h.threshold),
	})
}
