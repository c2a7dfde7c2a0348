package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jobs/dcron/internal/biz/node"
	"github.com/jobs/dcron/internal/biz/task"
	"github.com/jobs/dcron/internal/biz/taskdetail"
	"github.com/jobs/dcron/internal/ids"
	"github.com/jobs/dcron/internal/loadbalance"
)

const storeTimeout = 10 * time.Second

// Scheduler 调度节点: loader 抢占到期任务, dispatcher 到点派发, worker 池执行,
// 心跳循环处理跨节点通知, 恢复循环回收宕机节点的任务.
// 一个 Scheduler 只能 Start/Stop 一次.
type Scheduler struct {
	opts     Options
	nodeID   string
	logger   *zap.Logger
	registry *Registry
	strategy loadbalance.Strategy
	bus      *NotifyBus
	ids      *ids.Generator

	tasks   task.Repo
	details taskdetail.Repo
	nodes   node.Repo

	queue   *DelayQueue
	pool    *Pool
	handles *handles

	now       func() time.Time
	startedAt time.Time

	// runCtx 是所有在途任务 ctx 的父 ctx, Stop 时取消
	runCtx    context.Context
	cancelRun context.CancelFunc

	mu          sync.Mutex
	started     bool
	stopped     bool
	cancelLoops context.CancelFunc
	unsubscribe func()
	wg          sync.WaitGroup
}

// New 创建调度器
func New(
	opts Options,
	logger *zap.Logger,
	registry *Registry,
	strategy loadbalance.Strategy,
	bus *NotifyBus,

	taskRepo task.Repo,
	detailRepo taskdetail.Repo,
	nodeRepo node.Repo,
) *Scheduler {
	opts.normalize()
	if bus == nil {
		bus = NewNotifyBus(nil, logger)
	}
	if strategy == nil {
		strategy = loadbalance.NewDefaultStrategy()
	}

	runCtx, cancelRun := context.WithCancel(context.Background())
	s := &Scheduler{
		opts:      opts,
		nodeID:    opts.NodeID,
		logger:    logger.With(zap.String("node_id", opts.NodeID)),
		registry:  registry,
		strategy:  strategy,
		bus:       bus,
		ids:       ids.NewGenerator(opts.WorkerID.MustGet()),
		tasks:     taskRepo,
		details:   detailRepo,
		nodes:     nodeRepo,
		queue:     NewDelayQueue(opts.Clock),
		handles:   newHandles(),
		now:       opts.Clock,
		runCtx:    runCtx,
		cancelRun: cancelRun,
	}
	s.pool = NewPool(opts.Pool, s.logger)
	return s
}

func (s *Scheduler) NodeID() string {
	return s.nodeID
}

func (s *Scheduler) Registry() *Registry {
	return s.registry
}

// Start 注册节点, 释放本节点重启前持有的任务, 注册配置中的任务, 然后启动各循环
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrAlreadyStarted
	}

	s.logger.Info("starting scheduler",
		zap.String("strategy", s.strategy.Name()),
		zap.Int("weight", s.opts.Weight),
		zap.Uint16("worker_id", s.ids.WorkerID()),
		zap.Strings("jobs", s.registry.Keys()))

	if err := s.join(ctx); err != nil {
		return err
	}
	for _, job := range s.opts.Jobs {
		if _, err := s.RegisterTask(ctx, job.Name, job.Cron, job.Key); err != nil {
			return fmt.Errorf("failed to register job %q: %w", job.Name, err)
		}
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	s.cancelLoops = cancel
	s.started = true

	s.pool.Start()

	s.wg.Add(2)
	go s.runLoader(loopCtx)
	go s.runDispatcher(loopCtx)

	nudge, unsubscribe := s.bus.Subscribe(s.nodeID)
	s.unsubscribe = unsubscribe
	s.wg.Add(1)
	if s.opts.HeartbeatEnabled {
		go s.runHeartbeat(loopCtx, nudge, s.opts.HeartbeatInterval, s.heartbeatOnce)
	} else {
		// 不写心跳, 但通知槽仍按 fetch 周期轮询
		s.logger.Info("heartbeat is disabled, polling notifies every fetch period")
		go s.runHeartbeat(loopCtx, nudge, s.opts.FetchPeriod, s.processNotify)
	}

	if s.opts.RecoverEnabled {
		s.wg.Add(1)
		go s.runRecovery(loopCtx)
	} else {
		s.logger.Info("recovery is disabled")
	}

	return nil
}

// join registers this node and releases tasks it held before a restart.
func (s *Scheduler) join(ctx context.Context) error {
	now := s.now()
	n := &node.Node{
		ID:          s.ids.Next(),
		NodeID:      s.nodeID,
		WorkerID:    s.ids.WorkerID(),
		Status:      node.NodeStatusEnable,
		Weight:      s.opts.Weight,
		HeartbeatAt: now,
		NotifyCmd:   node.NotifyNone,
	}
	if err := s.nodes.Register(ctx, n); err != nil {
		return fmt.Errorf("failed to register node: %w", err)
	}
	if err := s.checkWorkerID(ctx, now); err != nil {
		if derr := s.nodes.UpdateStatus(ctx, s.nodeID, node.NodeStatusDisable); derr != nil {
			s.logger.Warn("failed to disable node", zap.Error(derr))
		}
		return err
	}

	released, err := s.tasks.ResetForNode(ctx, s.nodeID)
	if err != nil {
		return fmt.Errorf("failed to reset tasks of node: %w", err)
	}
	if released > 0 {
		s.logger.Info("released tasks held before restart", zap.Int64("count", released))
	}

	s.startedAt = now
	return nil
}

// checkWorkerID 拒绝与其他在线节点相同的 WorkerId, 否则两个节点会生成相同的任务和执行记录ID
func (s *Scheduler) checkWorkerID(ctx context.Context, now time.Time) error {
	live, err := s.nodes.ListLive(ctx, s.liveSince(now))
	if err != nil {
		return fmt.Errorf("failed to list live nodes: %w", err)
	}
	for _, n := range live {
		if n.NodeID != s.nodeID && n.WorkerID == s.ids.WorkerID() {
			return fmt.Errorf("%w: worker id %d is used by node %s", ErrWorkerIDConflict, n.WorkerID, n.NodeID)
		}
	}
	return nil
}

// Stop 停止各循环, 取消在途任务并等待其结束 (受 ctx 限制), 最后把节点置为 DISABLE
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started || s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	s.mu.Unlock()

	s.logger.Info("stopping scheduler")

	s.cancelLoops()
	s.wg.Wait()
	if s.unsubscribe != nil {
		s.unsubscribe()
	}

	s.cancelRun()
	done := make(chan struct{})
	go func() {
		s.pool.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("timed out waiting for running jobs",
			zap.Int("running", s.handles.len()))
	}

	storeCtx, cancel := s.storeContext()
	defer cancel()
	for _, t := range s.queue.Drain() {
		s.release(storeCtx, t, task.TaskStatusPending)
	}

	if err := s.nodes.UpdateStatus(storeCtx, s.nodeID, node.NodeStatusDisable); err != nil {
		return fmt.Errorf("failed to disable node: %w", err)
	}
	s.logger.Info("scheduler stopped")
	return nil
}

// release hands a task this node holds in status `from` back to the pool
// without moving its fire time.
func (s *Scheduler) release(ctx context.Context, t *task.Task, from task.TaskStatus) {
	_, err := s.updateTask(ctx, t.ID, t, func(cur *task.Task) error {
		if cur.Status != from || !cur.IsOwnedBy(s.nodeID) {
			return errSkipUpdate
		}
		cur.Release()
		return nil
	})
	if err != nil && !errors.Is(err, errSkipUpdate) {
		s.logger.Warn("failed to release task",
			zap.Uint64("task_id", t.ID),
			zap.Error(err))
	}
}

// liveSince 在线判定的起点. 关闭心跳时节点的心跳时间不再刷新, 所有 ENABLE 节点都视为在线.
func (s *Scheduler) liveSince(now time.Time) time.Time {
	if !s.opts.HeartbeatEnabled {
		return time.Time{}
	}
	return now.Add(-2 * s.opts.HeartbeatInterval)
}

func (s *Scheduler) storeContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), storeTimeout)
}

// guard runs one loop iteration, logging errors and recovering panics so a
// single bad iteration never ends the loop.
func (s *Scheduler) guard(ctx context.Context, loop string, fn func(context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("loop panic recovered",
				zap.String("loop", loop),
				zap.Any("panic", r))
		}
	}()
	if err := fn(ctx); err != nil && ctx.Err() == nil {
		s.logger.Error("loop iteration failed",
			zap.String("loop", loop),
			zap.Error(err))
	}
}

func (s *Scheduler) every(ctx context.Context, loop string, interval time.Duration, fn func(context.Context) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		s.guard(ctx, loop, fn)
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}
