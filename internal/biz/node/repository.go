package node

import (
	"context"
	"time"
)

type Repo interface {
	// Register 节点启动时注册或刷新: ENABLE, 心跳为 at, 清空通知
	Register(ctx context.Context, node *Node) error
	GetByNodeID(ctx context.Context, nodeID string) (*Node, error)
	List(ctx context.Context) ([]*Node, error)

	// ListLive ENABLE 且 heartbeat_at >= since, 按 node_id 排序
	ListLive(ctx context.Context, since time.Time) ([]*Node, error)

	// Heartbeat 只由节点自己写, 不做版本校验
	Heartbeat(ctx context.Context, nodeID string, at time.Time) error
	UpdateStatus(ctx context.Context, nodeID string, status NodeStatus) error

	// SetNotify only succeeds while the node has no pending notify.
	SetNotify(ctx context.Context, nodeID string, cmd NotifyCmd, value string) (bool, error)
	// ResetNotify clears the notify slot where version = expectedVersion.
	ResetNotify(ctx context.Context, nodeID string, expectedVersion int64) (bool, error)
}
