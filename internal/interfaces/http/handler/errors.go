package handler

import (
	"github.com/gin-gonic/gin"

	"dreamwriter-api/internal/interfaces/http/dto"
	apperrors "dreamwriter-api/pkg/errors"
	"dreamwriter-api/pkg/logger"
)

// respondError 业务错误按 AppError 状态码输出，其余记录日志并返回 500
func respondError(c *gin.Context, err error, msg string) {
	if apperrors.IsAppError(err) {
		dto.AppError(c, apperrors.AsAppError(err))
		return
	}
	logger.Error(c.Request.Context(), msg, err)
	dto.InternalError(c, msg)
}
