package node

import (
	"errors"
	"time"
)

var ErrNodeNotFound = errors.New("node not found")

// Node 调度节点注册信息
type Node struct {
	ID        uint64
	CreatedAt time.Time
	UpdatedAt time.Time

	NodeID      string
	WorkerID    uint16 // 雪花ID的WorkerId, 在线节点之间不能重复
	Status      NodeStatus
	Weight      int
	HeartbeatAt time.Time
	NotifyCmd   NotifyCmd
	NotifyValue string
	Version     int64
}

// EffectiveWeight treats non-positive weights as 1.
func (n *Node) EffectiveWeight() int {
	if n.Weight <= 0 {
		return 1
	}
	return n.Weight
}

func (n *Node) IsLive(since time.Time) bool {
	return n.Status == NodeStatusEnable && !n.HeartbeatAt.Before(since)
}

func (n *Node) HasNotify() bool {
	return n.NotifyCmd != "" && n.NotifyCmd != NotifyNone
}
