package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/jobs/dcron/internal/infra/persistence/memrepo"
	"github.com/jobs/dcron/internal/loadbalance"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testOptions(nodeID string) Options {
	return Options{
		NodeID:        nodeID,
		Weight:        1,
		FetchPeriod:   20 * time.Millisecond,
		FetchDuration: 2 * time.Second,
		Pool: PoolOptions{
			CoreSize:      2,
			MaxSize:       4,
			QueueCapacity: 8,
			KeepAlive:     time.Second,
		},
		HeartbeatEnabled:  true,
		HeartbeatInterval: 200 * time.Millisecond,
		RecoverEnabled:    true,
		RecoverInterval:   200 * time.Millisecond,
	}
}

func newTestScheduler(t *testing.T, store *memrepo.Store, opts Options, reg *Registry) *Scheduler {
	t.Helper()
	s := New(opts, zap.NewNop(), reg, loadbalance.NewDefaultStrategy(), NewNotifyBus(nil, zap.NewNop()),
		store.Tasks(), store.Details(), store.Nodes())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	})
	return s
}

func noop(context.Context) error { return nil }
