package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"attendly/internal/service"
	apperrors "attendly/pkg/errors"
	"attendly/pkg/response"
)

// handleStoreError 将业务错误映射为统一响应
func handleStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSubjectNotFound):
		response.NotFound(c, response.CodeSubjectNotFound, "课程不存在")
	case errors.Is(err, apperrors.ErrNotFound):
		response.NotFound(c, response.CodeRecordNotFound, "记录不存在")
	case errors.Is(err, apperrors.ErrValidation):
		response.BadRequest(c, response.CodeValidation, err.Error())
	case errors.Is(err, apperrors.ErrPersistence):
		response.ServiceUnavailable(c, response.CodePersistence, "数据保存失败，请稍后重试")
	default:
		response.InternalError(c)
	}
}
