package loadbalance

import (
	"github.com/jobs/dcron/internal/biz/node"
	"github.com/jobs/dcron/internal/biz/task"
)

const (
	StrategyDefault  = "default"
	StrategyWeighted = "weighted"
)

// Strategy 抢占策略: 决定本节点是否去抢某个到期任务
type Strategy interface {
	// Accept is called once per due task per loader cycle. liveNodes is the
	// current roster; the conditional claim write stays the final arbiter.
	Accept(liveNodes []*node.Node, t *task.Task, myNodeID string) bool
	// Name 策略名称
	Name() string
}
