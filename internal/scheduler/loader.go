package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jobs/dcron/internal/biz/task"
	"github.com/jobs/dcron/internal/cronexpr"
)

func (s *Scheduler) runLoader(ctx context.Context) {
	defer s.wg.Done()
	s.logger.Info("task loader started",
		zap.Duration("period", s.opts.FetchPeriod),
		zap.Duration("window", s.opts.FetchDuration))
	s.every(ctx, "loader", s.opts.FetchPeriod, s.loadOnce)
}

// loadOnce 一次抢占周期: 读在线节点和即将到期的任务, 经策略筛选后条件更新为 PENDING 并入队
func (s *Scheduler) loadOnce(ctx context.Context) error {
	now := s.now()

	live, err := s.nodes.ListLive(ctx, s.liveSince(now))
	if err != nil {
		return fmt.Errorf("failed to list live nodes: %w", err)
	}
	if len(live) == 0 {
		return nil
	}

	due, err := s.tasks.ListDue(ctx, now.Add(s.opts.FetchDuration))
	if err != nil {
		return fmt.Errorf("failed to list due tasks: %w", err)
	}

	for _, t := range due {
		if ctx.Err() != nil {
			return nil
		}
		if !s.strategy.Accept(live, t, s.nodeID) {
			continue
		}
		if err := s.claim(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) claim(ctx context.Context, t *task.Task) error {
	if t.NextStartTime == nil {
		return nil
	}

	// 整个集群停机期间错过的触发不补跑, 从本进程启动时间重新计算
	if t.NextStartTime.Before(s.startedAt) {
		return s.skipMissed(ctx, t)
	}

	claimed := t.Clone()
	claimed.Claim(s.nodeID)
	ok, err := s.tasks.UpdateWithVersion(ctx, claimed, t.Version)
	if err != nil {
		return fmt.Errorf("failed to claim task %d: %w", t.ID, err)
	}
	if !ok {
		return nil
	}

	s.queue.Push(claimed, *claimed.NextStartTime)
	s.logger.Debug("task claimed",
		zap.Uint64("task_id", t.ID),
		zap.String("name", t.Name),
		zap.Time("fire_time", *claimed.NextStartTime),
		zap.Duration("delay", fireDelay(*claimed.NextStartTime, s.now())))
	return nil
}

func (s *Scheduler) skipMissed(ctx context.Context, t *task.Task) error {
	next, err := cronexpr.Next(t.CronExpression, s.startedAt)
	if err != nil {
		s.logger.Error("stored cron expression is invalid",
			zap.Uint64("task_id", t.ID),
			zap.String("cron", t.CronExpression),
			zap.Error(err))
		return nil
	}

	rescheduled := t.Clone()
	rescheduled.Reschedule(next)
	ok, err := s.tasks.UpdateWithVersion(ctx, rescheduled, t.Version)
	if err != nil {
		return fmt.Errorf("failed to reschedule missed task %d: %w", t.ID, err)
	}
	if ok {
		s.logger.Info("skipped fire time missed before startup",
			zap.Uint64("task_id", t.ID),
			zap.Time("missed", *t.NextStartTime),
			zap.Timep("next", next))
	}
	return nil
}

// fireDelay 距离触发时间的时长, 已过期时为 0
func fireDelay(fireTime, now time.Time) time.Duration {
	if d := fireTime.Sub(now); d > 0 {
		return d
	}
	return 0
}
