package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
	"github.com/xiebiao/bookcatalog/pkg/logger"
)

// ErrorBody 错误响应结构
// 只包含业务错误码和可以给用户看的提示，内部错误只写日志
type ErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// MessageBody 写操作的响应
type MessageBody struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

// JSON 原样输出200响应
func JSON(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Message 输出200消息响应
func Message(c *gin.Context, message string) {
	c.JSON(http.StatusOK, MessageBody{Message: message})
}

// MessageWithID 输出带ID的200消息响应
func MessageWithID(c *gin.Context, message, id string) {
	c.JSON(http.StatusOK, MessageBody{Message: message, ID: id})
}

// Error 错误响应（自动处理AppError）
//
//	if err != nil {
//	    response.Error(c, err)
//	    return
//	}
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)
	status := StatusOf(appErr.Kind)

	if appErr.Err != nil || status >= http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error("request failed",
			zap.Int("code", appErr.Code),
			zap.String("kind", appErr.Kind.String()),
			zap.Error(err),
		)
	}

	c.JSON(status, ErrorBody{
		Code:    appErr.Code,
		Message: appErr.Message,
	})
}

// Abort 输出错误并终止后续Handler
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

// StatusOf 错误类别 → HTTP状态码
func StatusOf(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindValidation, apperrors.KindNotModified:
		return http.StatusBadRequest
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindUnauthorized:
		return http.StatusUnauthorized
	case apperrors.KindForbidden:
		return http.StatusForbidden
	case apperrors.KindConflict:
		return http.StatusConflict
	case apperrors.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
