package scheduler

import (
	"context"

	"go.uber.org/zap"

	"github.com/jobs/dcron/internal/biz/task"
)

func (s *Scheduler) runDispatcher(ctx context.Context) {
	defer s.wg.Done()
	s.logger.Info("delay dispatcher started")

	for {
		t, err := s.queue.Take(ctx)
		if err != nil {
			return
		}
		s.guard(ctx, "dispatcher", func(ctx context.Context) error {
			s.fire(ctx, t)
			return nil
		})
	}
}

// fire 到点的任务条件更新为 DOING 后交给 worker 池. 版本冲突说明任务在排队期间
// 被停止, 修改或回收, 直接丢弃这份副本.
func (s *Scheduler) fire(ctx context.Context, t *task.Task) {
	running := t.Clone()
	running.Start()
	ok, err := s.tasks.UpdateWithVersion(ctx, running, t.Version)
	if err != nil {
		if ctx.Err() != nil {
			s.queue.Push(t, *t.NextStartTime)
			return
		}
		s.logger.Error("failed to mark task running, retry later",
			zap.Uint64("task_id", t.ID),
			zap.Error(err))
		s.queue.Push(t, s.now().Add(s.opts.FetchPeriod))
		return
	}
	if !ok {
		s.logger.Debug("queued task changed, dropped",
			zap.Uint64("task_id", t.ID))
		return
	}

	jobCtx, cancel := context.WithCancel(s.runCtx)
	s.handles.add(t.ID, cancel)
	err = s.pool.Submit(ctx, func() {
		s.execute(jobCtx, running)
	})
	if err != nil {
		s.handles.finish(t.ID)
		s.logger.Warn("failed to submit task, releasing",
			zap.Uint64("task_id", t.ID),
			zap.Error(err))
		storeCtx, cancelStore := s.storeContext()
		defer cancelStore()
		s.release(storeCtx, running, task.TaskStatusDoing)
	}
}
