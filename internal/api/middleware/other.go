package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jobs/dcron/internal/biz/node"
	"github.com/jobs/dcron/internal/biz/task"
	"github.com/jobs/dcron/internal/dto/response"
	"github.com/jobs/dcron/internal/scheduler"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// RequestID 透传或生成请求ID
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func Cors() gin.HandlerFunc {
	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", RequestIDHeader}
	return cors.New(config)
}

// ErrorHandlingMiddleware 统一错误处理中间件, badRequest 中的错误按 400 返回
func ErrorHandlingMiddleware(logger *zap.Logger, badRequest ...error) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic recovered",
					zap.Any("error", err),
					zap.String("request_id", c.GetString(requestIDKey)),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method))

				c.AbortWithStatusJSON(http.StatusInternalServerError, response.ErrorResponse{
					Code:    "INTERNAL_ERROR",
					Message: "An internal error occurred",
				})
			}
		}()

		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		status, body := classify(err, badRequest)

		fields := []zap.Field{
			zap.Error(err),
			zap.Int("status", status),
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		}
		if status >= http.StatusInternalServerError {
			logger.Error("request error", fields...)
		} else {
			logger.Info("request rejected", fields...)
		}
		c.JSON(status, body)
	}
}

func classify(err error, badRequest []error) (int, response.ErrorResponse) {
	switch {
	case errors.Is(err, task.ErrTaskNotFound), errors.Is(err, node.ErrNodeNotFound):
		return http.StatusNotFound, response.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()}
	case errors.Is(err, task.ErrInvalidCron), errors.Is(err, task.ErrInvalidName), isAny(err, badRequest):
		return http.StatusBadRequest, response.ErrorResponse{Code: "BAD_REQUEST", Message: err.Error()}
	case errors.Is(err, task.ErrTaskRunning):
		return http.StatusConflict, response.ErrorResponse{Code: "TASK_RUNNING", Message: err.Error()}
	case errors.Is(err, scheduler.ErrNotifyBusy):
		return http.StatusConflict, response.ErrorResponse{Code: "NOTIFY_BUSY", Message: "target node has a pending command, retry later"}
	case errors.Is(err, scheduler.ErrVersionConflict):
		return http.StatusConflict, response.ErrorResponse{Code: "CONFLICT", Message: "task changed concurrently, retry later"}
	}
	return http.StatusInternalServerError, response.ErrorResponse{
		Code:    "INTERNAL_ERROR",
		Message: "An error occurred while processing your request",
		Details: err.Error(),
	}
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
