package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"attendly/internal/dto"
	"attendly/internal/model"
	"attendly/internal/service"
	"attendly/pkg/response"
)

// SubjectHandler 课程模块 HTTP 处理器
type SubjectHandler struct {
	svc       service.AttendanceService
	threshold int
}

// NewSubjectHandler 创建 SubjectHandler
func NewSubjectHandler(svc service.AttendanceService, threshold int) *SubjectHandler {
	return &SubjectHandler{svc: svc, threshold: threshold}
}

// ListSubjects 获取课程列表（含出勤汇总，按创建顺序）
// GET /api/v1/subjects
func (h *SubjectHandler) ListSubjects(c *gin.Context) {
	response.OK(c, gin.H{"list": h.svc.SubjectStats()})
}

// GetSubject 获取课程详情
// GET /api/v1/subjects/:id
func (h *SubjectHandler) GetSubject(c *gin.Context) {
	id := c.Param("id")

	subject, err := h.svc.GetSubject(id)
	if err != nil {
		handleStoreError(c, err)
		return
	}

	attendance := h.svc.GetSubjectAttendance(id)
	response.OK(c, dto.SubjectDetailResponse{
		Subject:    *subject,
		Attendance: attendance,
		IsLow:      service.IsLowAttendance(attendance, h.threshold),
	})
}

// CreateSubject 创建课程
// POST /api/v1/subjects
func (h *SubjectHandler) CreateSubject(c *gin.Context) {
	var req dto.CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeBadParams, "参数格式错误")
		return
	}

	subject, err := h.svc.CreateSubject(c.Request.Context(), &req)
	if err != nil {
		handleStoreError(c, err)
		return
	}

	response.Created(c, subject)
}

// UpdateSubject 更新课程（仅修改提供的字段）
// PUT /api/v1/subjects/:id
func (h *SubjectHandler) UpdateSubject(c *gin.Context) {
	var req dto.UpdateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeBadParams, "参数格式错误")
		return
	}

	subject, err := h.svc.UpdateSubject(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleStoreError(c, err)
		return
	}

	response.OK(c, subject)
}

// DeleteSubject 删除课程及其全部出勤记录
// DELETE /api/v1/subjects/:id
func (h *SubjectHandler) DeleteSubject(c *gin.Context) {
	if err := h.svc.DeleteSubject(c.Request.Context(), c.Param("id")); err != nil {
		handleStoreError(c, err)
		return
	}

	response.OK(c, nil)
}

// GetAttendance 获取课程出勤汇总
// GET /api/v1/subjects/:id/attendance
func (h *SubjectHandler) GetAttendance(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.svc.GetSubject(id); err != nil {
		handleStoreError(c, err)
		return
	}

	response.OK(c, h.svc.GetSubjectAttendance(id))
}

// ListRecords 获取课程全部出勤记录
// GET /api/v1/subjects/:id/records
func (h *SubjectHandler) ListRecords(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.svc.GetSubject(id); err != nil {
		handleStoreError(c, err)
		return
	}

	response.OK(c, gin.H{"list": h.svc.ListAttendance(id)})
}

// GetRecordForDate 获取课程某天的出勤记录
// GET /api/v1/subjects/:id/records/:date
func (h *SubjectHandler) GetRecordForDate(c *gin.Context) {
	date := c.Param("date")
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		response.BadRequest(c, response.CodeBadParams, "日期格式应为 YYYY-MM-DD")
		return
	}

	record, ok := h.svc.GetAttendanceForDate(c.Param("id"), date)
	if !ok {
		response.NotFound(c, response.CodeRecordNotFound, "当天没有出勤记录")
		return
	}

	response.OK(c, record)
}
