package response

import (
	"time"

	"github.com/jobs/dcron/internal/biz/node"
)

// NodeResponse 节点响应
type NodeResponse struct {
	NodeID      string          `json:"node_id"`
	Status      node.NodeStatus `json:"status"`
	Weight      int             `json:"weight"`
	HeartbeatAt time.Time       `json:"heartbeat_at"`
	NotifyCmd   node.NotifyCmd  `json:"notify_cmd"`
	NotifyValue string          `json:"notify_value,omitempty"`
	Live        bool            `json:"live"`
}
