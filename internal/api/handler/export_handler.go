package handler

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"attendly/internal/dto"
	"attendly/internal/service"
	"attendly/pkg/response"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportAttendance 导出出勤统计
// GET /api/v1/export/attendance
func (h *ExportHandler) ExportAttendance(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportAttendance(c.Request.Context())
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	sendFile(c, buf, filename, contentTypeXLSX)
}

// ExportDeadlines 导出即将截止的作业为日历文件
// GET /api/v1/export/deadlines?days=7
func (h *ExportHandler) ExportDeadlines(c *gin.Context) {
	var q dto.DeadlineQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, response.CodeBadParams, "days 必须是 0-365 之间的整数")
		return
	}
	days := -1 // 使用默认窗口
	if q.Days != nil {
		days = *q.Days
	}

	buf, filename, err := h.exportSvc.ExportDeadlines(c.Request.Context(), days)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	sendFile(c, buf, filename, contentTypeICS)
}

// sendFile 设置下载响应头
func sendFile(c *gin.Context, buf *bytes.Buffer, filename, contentType string) {
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoSubjects):
		response.BadRequest(c, response.CodeExportEmpty, "暂无课程，无法导出")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}
