package scheduler

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jobs/dcron/internal/biz/task"
	"github.com/jobs/dcron/internal/cronexpr"
)

func (s *Scheduler) runRecovery(ctx context.Context) {
	defer s.wg.Done()
	s.logger.Info("recovery started", zap.Duration("interval", s.opts.RecoverInterval))
	s.every(ctx, "recovery", s.opts.RecoverInterval, s.recoverOnce)
}

// recoverOnce 把宕机节点遗留的 PENDING/DOING 任务和 ERROR 任务重置为 NOT_STARTED.
// 遗留任务保留原触发时间, ERROR 任务按 cron 从现在重新计算.
func (s *Scheduler) recoverOnce(ctx context.Context) error {
	now := s.now()
	since := s.liveSince(now)
	staleBefore := now.Add(-2 * s.opts.HeartbeatInterval)

	list, err := s.tasks.ListRecoverable(ctx, since, staleBefore)
	if err != nil {
		return fmt.Errorf("failed to list recoverable tasks: %w", err)
	}

	for _, t := range list {
		reset := t.Clone()
		switch t.Status {
		case task.TaskStatusPending, task.TaskStatusDoing:
			reset.Release()
		case task.TaskStatusError:
			next, err := cronexpr.Next(t.CronExpression, now)
			if err != nil {
				s.logger.Error("stored cron expression is invalid",
					zap.Uint64("task_id", t.ID),
					zap.Error(err))
				continue
			}
			reset.Reschedule(next)
		default:
			continue
		}

		ok, err := s.tasks.UpdateWithVersion(ctx, reset, t.Version)
		if err != nil {
			return fmt.Errorf("failed to reset task %d: %w", t.ID, err)
		}
		if ok {
			s.logger.Info("task recovered",
				zap.Uint64("task_id", t.ID),
				zap.String("from", string(t.Status)),
				zap.String("previous_node", t.NodeID),
				zap.String("to", string(reset.Status)))
		}
	}
	return nil
}
