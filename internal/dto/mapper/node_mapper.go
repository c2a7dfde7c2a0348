package mapper

import (
	"time"

	"github.com/samber/lo"

	"github.com/jobs/dcron/internal/biz/node"
	"github.com/jobs/dcron/internal/dto/response"
)

// ToNodeListResponse live 以 liveSince 为界判定节点是否在线
func ToNodeListResponse(nodes []*node.Node, liveSince time.Time) []response.NodeResponse {
	return lo.Map(nodes, func(n *node.Node, _ int) response.NodeResponse {
		return response.NodeResponse{
			NodeID:      n.NodeID,
			Status:      n.Status,
			Weight:      n.EffectiveWeight(),
			HeartbeatAt: n.HeartbeatAt,
			NotifyCmd:   n.NotifyCmd,
			NotifyValue: n.NotifyValue,
			Live:        n.IsLive(liveSince),
		}
	})
}
