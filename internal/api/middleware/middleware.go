package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/validators/runner/internal/biz/execution"
	domainError "github.com/validators/runner/internal/domain/error"
)

// ErrorResponse 统一错误响应格式
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// MapError 领域错误到HTTP状态码的唯一映射点
func MapError(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, domainError.ErrScriptNotFound),
		errors.Is(err, domainError.ErrExecutionNotFound),
		errors.Is(err, domainError.ErrScriptFileMissing),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, ErrorResponse{Code: "NOT_FOUND", Message: err.Error()}

	case errors.Is(err, domainError.ErrExecutionNotCancelable),
		errors.Is(err, execution.ErrInvalidTransition):
		return http.StatusBadRequest, ErrorResponse{Code: "NOT_CANCELABLE", Message: err.Error()}

	case errors.Is(err, domainError.ErrScriptInfoRequired),
		errors.Is(err, domainError.ErrInvalidInput):
		return http.StatusBadRequest, ErrorResponse{Code: "INVALID_REQUEST", Message: err.Error()}

	case errors.Is(err, domainError.ErrScriptAlreadyExists),
		errors.Is(err, gorm.ErrDuplicatedKey):
		return http.StatusConflict, ErrorResponse{Code: "DUPLICATE", Message: err.Error()}
	}

	var de domainError.DomainError
	if errors.As(err, &de) {
		return http.StatusBadRequest, ErrorResponse{Code: de.Code(), Message: de.Message()}
	}

	return http.StatusInternalServerError, ErrorResponse{
		Code:    "INTERNAL_ERROR",
		Message: "An error occurred while processing your request",
		Details: err.Error(),
	}
}

// ErrorHandlingMiddleware 统一错误处理中间件
func ErrorHandlingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic recovered",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method))

				c.JSON(http.StatusInternalServerError, ErrorResponse{
					Code:    "INTERNAL_ERROR",
					Message: "An internal error occurred",
				})
				c.Abort()
			}
		}()

		c.Next()

		// 处理 handler 通过 c.Error 上报的错误
		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last().Err
			logger.Error("request error",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method))

			status, resp := MapError(err)
			c.JSON(status, resp)
		}
	}
}

// Cors 跨域配置，校验页面从前端域名直接调用
func Cors() gin.HandlerFunc {
	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	return cors.New(config)
}
