package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"attendly/internal/dto"
	"attendly/internal/service"
	"attendly/pkg/response"
)

// TimetableHandler 课表导入 Handler
type TimetableHandler struct {
	svc         service.TimetableService
	maxFileSize int64
}

// NewTimetableHandler 创建 TimetableHandler 实例
func NewTimetableHandler(svc service.TimetableService, maxFileSize int64) *TimetableHandler {
	return &TimetableHandler{svc: svc, maxFileSize: maxFileSize}
}

// ImportICS 导入 ICS 课表，为尚不存在的课程创建 Subject
// POST /api/v1/timetables/import
//
// 支持两种方式：
//   - 文件上传: multipart/form-data, field="file"
//   - URL 导入: application/json, body={"url": "..."}，或表单字段 url
func (h *TimetableHandler) ImportICS(c *gin.Context) {
	// 尝试文件上传方式
	file, header, err := c.Request.FormFile("file")
	if err == nil {
		defer file.Close()
		if h.maxFileSize > 0 && header.Size > h.maxFileSize {
			response.BadRequest(c, response.CodeBadParams, "课表文件过大")
			return
		}
		resp, err := h.svc.ImportICS(c.Request.Context(), file)
		if err != nil {
			handleTimetableError(c, err, resp)
			return
		}
		response.Created(c, resp)
		return
	}

	// 尝试 URL 方式
	var req dto.ImportICSRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, response.CodeBadParams, "请上传 ICS 文件或提供 ICS URL")
		return
	}

	resp, err := h.svc.ImportICSFromURL(c.Request.Context(), req.URL)
	if err != nil {
		handleTimetableError(c, err, resp)
		return
	}
	response.Created(c, resp)
}

// handleTimetableError 部分导入成功时在 details 中附带已创建数量
func handleTimetableError(c *gin.Context, err error, partial *dto.TimetableImportResponse) {
	switch {
	case errors.Is(err, service.ErrICSFetch):
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeTimetableFetch, "ICS URL 获取失败", err.Error())
	case errors.Is(err, service.ErrICSParse), errors.Is(err, service.ErrICSEmpty):
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeTimetableInvalid, "ICS 文件解析失败", err.Error())
	case partial != nil && len(partial.Created) > 0:
		c.JSON(http.StatusServiceUnavailable, response.Response{
			Code:    response.CodePersistence,
			Message: "课表部分导入失败",
			Data:    partial,
			Details: err.Error(),
		})
	default:
		handleStoreError(c, err)
	}
}
