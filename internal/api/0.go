package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	"github.com/spf13/cast"
)

var Provider = wire.NewSet(
	NewTaskAPI,
	NewNodeAPI,
	NewCommonAPI,
	NewServer,
)

// ErrBadRequest 请求参数错误
var ErrBadRequest = errors.New("bad request")

func onGinBind(c *gin.Context, val any, typ string) bool {
	var err error
	switch typ {
	case "JSON":
		err = c.ShouldBindJSON(val)
	case "QUERY":
		err = c.ShouldBindQuery(val)
	default:
		err = c.ShouldBind(val)
	}
	if err != nil {
		_ = c.Error(fmt.Errorf("%w: %v", ErrBadRequest, err))
		return false
	}
	return true
}

// onGinResponse 错误交给错误处理中间件统一输出
func onGinResponse[T any](c *gin.Context, data T, err error) {
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, data)
}

func parseID(raw string) (uint64, error) {
	id, err := cast.ToUint64E(raw)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid id %q", ErrBadRequest, raw)
	}
	return id, nil
}
