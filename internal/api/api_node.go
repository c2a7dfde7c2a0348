package api

import (
	"github.com/gin-gonic/gin"

	"github.com/jobs/dcron/internal/dto/mapper"
	"github.com/jobs/dcron/internal/dto/response"
)

type INodeAPI interface {
	// List 获取节点列表
	// @GET(api/v1/nodes)
	List(ctx *gin.Context) ([]response.NodeResponse, error)
}

var _ INodeAPI = (*NodeAPI)(nil)

type NodeAPI struct {
	control Control
}

func NewNodeAPI(control Control) *NodeAPI {
	return &NodeAPI{control: control}
}

func (a *NodeAPI) List(ctx *gin.Context) ([]response.NodeResponse, error) {
	nodes, err := a.control.ListNodes(ctx)
	if err != nil {
		return nil, err
	}
	return mapper.ToNodeListResponse(nodes, a.control.LiveSince()), nil
}
