package loadbalance

import (
	"fmt"
)

// Manager 抢占策略注册表
type Manager struct {
	strategies map[string]Strategy
}

// NewManager 创建策略管理器并注册内置策略
func NewManager() *Manager {
	m := &Manager{
		strategies: make(map[string]Strategy),
	}
	m.Register(NewDefaultStrategy())
	m.Register(NewWeightedStrategy())
	return m
}

func (m *Manager) Register(s Strategy) {
	m.strategies[s.Name()] = s
}

// Get 获取指定的抢占策略, 空名称返回默认策略
func (m *Manager) Get(name string) (Strategy, error) {
	if name == "" {
		name = StrategyDefault
	}
	strategy, ok := m.strategies[name]
	if !ok {
		return nil, fmt.Errorf("unknown claim strategy: %s", name)
	}
	return strategy, nil
}
