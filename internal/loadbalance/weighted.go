package loadbalance

import (
	"sort"

	"github.com/jobs/dcron/internal/biz/node"
	"github.com/jobs/dcron/internal/biz/task"
)

// WeightedStrategy 按权重切分任务: 节点按 id 排序后各占一段权重区间,
// task.ID % 总权重 落在哪个区间就由哪个节点抢占
type WeightedStrategy struct{}

func NewWeightedStrategy() *WeightedStrategy {
	return &WeightedStrategy{}
}

func (s *WeightedStrategy) Accept(liveNodes []*node.Node, t *task.Task, myNodeID string) bool {
	if len(liveNodes) == 0 {
		return false
	}

	sorted := make([]*node.Node, len(liveNodes))
	copy(sorted, liveNodes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].NodeID < sorted[j].NodeID })

	var (
		total    uint64
		preSum   uint64
		myWeight uint64
		found    bool
	)
	for _, n := range sorted {
		w := uint64(n.EffectiveWeight())
		if n.NodeID == myNodeID && !found {
			preSum = total
			myWeight = w
			found = true
		}
		total += w
	}
	if !found {
		return false
	}

	remainder := t.ID % total
	return remainder >= preSum && remainder < preSum+myWeight
}

func (s *WeightedStrategy) Name() string {
	return StrategyWeighted
}
