package api

import (
	"github.com/gin-gonic/gin"

	"github.com/jobs/dcron/internal/dto/request"
)

type TaskAPIWrap struct {
	inner ITaskAPI
}

func NewTaskAPIWrap(inner ITaskAPI) *TaskAPIWrap {
	return &TaskAPIWrap{inner: inner}
}

func (a *TaskAPIWrap) BindAll(router gin.IRouter) {
	router.GET("/api/v1/tasks", func(c *gin.Context) {
		var req request.GetTasksRequest
		if !onGinBind(c, &req, "QUERY") {
			return
		}
		data, err := a.inner.List(c, req)
		onGinResponse(c, data, err)
	})
	router.GET("/api/v1/tasks/:id", func(c *gin.Context) {
		data, err := a.inner.Get(c, c.Param("id"))
		onGinResponse(c, data, err)
	})
	router.POST("/api/v1/tasks/:id/start", func(c *gin.Context) {
		data, err := a.inner.Start(c, c.Param("id"))
		onGinResponse(c, data, err)
	})
	router.POST("/api/v1/tasks/:id/stop", func(c *gin.Context) {
		data, err := a.inner.Stop(c, c.Param("id"))
		onGinResponse(c, data, err)
	})
	router.PUT("/api/v1/tasks/:id/cron", func(c *gin.Context) {
		var req request.EditCronRequest
		if !onGinBind(c, &req, "JSON") {
			return
		}
		data, err := a.inner.EditCron(c, c.Param("id"), req)
		onGinResponse(c, data, err)
	})
	router.GET("/api/v1/tasks/:id/details", func(c *gin.Context) {
		var req request.ListTaskDetailsRequest
		if !onGinBind(c, &req, "QUERY") {
			return
		}
		data, err := a.inner.Details(c, c.Param("id"), req)
		onGinResponse(c, data, err)
	})
}

type NodeAPIWrap struct {
	inner INodeAPI
}

func NewNodeAPIWrap(inner INodeAPI) *NodeAPIWrap {
	return &NodeAPIWrap{inner: inner}
}

func (a *NodeAPIWrap) BindAll(router gin.IRouter) {
	router.GET("/api/v1/nodes", func(c *gin.Context) {
		data, err := a.inner.List(c)
		onGinResponse(c, data, err)
	})
}

type CommonAPIWrap struct {
	inner ICommonAPI
}

func NewCommonAPIWrap(inner ICommonAPI) *CommonAPIWrap {
	return &CommonAPIWrap{inner: inner}
}

func (a *CommonAPIWrap) BindAll(router gin.IRouter) {
	router.GET("/api/v1/health", func(c *gin.Context) {
		data, err := a.inner.HealthCheck(c)
		onGinResponse(c, data, err)
	})
}
