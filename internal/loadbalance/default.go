package loadbalance

import (
	"github.com/jobs/dcron/internal/biz/node"
	"github.com/jobs/dcron/internal/biz/task"
)

// DefaultStrategy 所有节点都去抢, 由版本号条件更新决定谁胜出
type DefaultStrategy struct{}

func NewDefaultStrategy() *DefaultStrategy {
	return &DefaultStrategy{}
}

func (s *DefaultStrategy) Accept([]*node.Node, *task.Task, string) bool {
	return true
}

func (s *DefaultStrategy) Name() string {
	return StrategyDefault
}
