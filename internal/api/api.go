package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jobs/dcron/internal/dto/response"
)

type ICommonAPI interface {
	// HealthCheck 健康检查
	// 检查存储是否可用
	// @GET(api/v1/health)
	HealthCheck(ctx *gin.Context) (response.HealthResponse, error)
}

var _ ICommonAPI = (*CommonAPI)(nil)

type CommonAPI struct {
	control Control
	pinger  Pinger
}

// NewCommonAPI pinger 为空时不检查存储
func NewCommonAPI(control Control, pinger Pinger) *CommonAPI {
	return &CommonAPI{control: control, pinger: pinger}
}

func (c *CommonAPI) HealthCheck(ctx *gin.Context) (response.HealthResponse, error) {
	if c.pinger != nil {
		if err := c.pinger.Ping(); err != nil {
			return response.HealthResponse{}, fmt.Errorf("storage unavailable: %w", err)
		}
	}
	return response.HealthResponse{
		Status: "healthy",
		NodeID: c.control.NodeID(),
		Time:   time.Now(),
	}, nil
}

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBadRequest, fmt.Sprintf(format, args...))
}
