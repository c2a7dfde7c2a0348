package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jobs/dcron/internal/biz/task"
	"github.com/jobs/dcron/internal/biz/taskdetail"
	"github.com/jobs/dcron/internal/cronexpr"
)

const (
	msgStopped  = "canceled by stop request"
	msgShutdown = "canceled by node shutdown"
)

// execute 执行一次任务: 建执行记录, 调用 job, 按结果更新任务并关闭执行记录
func (s *Scheduler) execute(ctx context.Context, t *task.Task) {
	storeCtx, cancel := s.storeContext()
	defer cancel()

	if s.runCtx.Err() != nil {
		s.handles.finish(t.ID)
		s.release(storeCtx, t, task.TaskStatusDoing)
		return
	}

	// 排队期间收到停止请求: 不执行, 也不建执行记录, STOP 已由心跳写入
	if ctx.Err() != nil && s.handles.finish(t.ID) {
		s.logger.Info("task stopped before it started",
			zap.Uint64("task_id", t.ID),
			zap.String("name", t.Name))
		return
	}

	detail := s.openDetail(storeCtx, t)
	jobErr := s.invoke(ctx, t)
	stopped := s.handles.finish(t.ID)
	end := s.now()

	log := s.logger.With(
		zap.Uint64("task_id", t.ID),
		zap.String("name", t.Name))

	switch {
	case stopped:
		// 停止请求由心跳循环写 STOP, 这里只关闭执行记录
		log.Info("task stopped by request")
		s.finishDetail(storeCtx, detail, end, jobErr, msgStopped)
		return
	case jobErr != nil && s.runCtx.Err() != nil:
		log.Info("task interrupted by shutdown, releasing")
		s.release(storeCtx, t, task.TaskStatusDoing)
		s.finishDetail(storeCtx, detail, end, jobErr, msgShutdown)
		return
	}

	_, err := s.updateTask(storeCtx, t.ID, t, func(cur *task.Task) error {
		if cur.Status != task.TaskStatusDoing || !cur.IsOwnedBy(s.nodeID) {
			return errSkipUpdate
		}
		if jobErr != nil {
			cur.Fail()
			return nil
		}
		next, err := cronexpr.Next(cur.CronExpression, *cur.NextStartTime)
		if err != nil {
			cur.Fail()
			return nil
		}
		cur.Succeed(next)
		return nil
	})
	switch {
	case errors.Is(err, errSkipUpdate):
		log.Warn("task no longer owned after run, result not recorded")
	case err != nil:
		log.Error("failed to record task result", zap.Error(err))
	}

	if jobErr != nil {
		log.Warn("task failed", zap.Error(jobErr))
	} else {
		log.Debug("task succeeded", zap.Duration("elapsed", end.Sub(detailStart(detail, end))))
	}
	s.finishDetail(storeCtx, detail, end, jobErr, "")
}

func (s *Scheduler) openDetail(ctx context.Context, t *task.Task) *taskdetail.TaskDetail {
	fireTime := *t.NextStartTime
	attempts, err := s.details.CountAttempts(ctx, t.ID, fireTime)
	if err != nil {
		s.logger.Warn("failed to count attempts",
			zap.Uint64("task_id", t.ID),
			zap.Error(err))
	}

	detail := &taskdetail.TaskDetail{
		ID:         s.ids.Next(),
		TaskID:     t.ID,
		NodeID:     s.nodeID,
		FireTime:   fireTime,
		RetryCount: int(attempts),
		Status:     taskdetail.DetailStatusDoing,
		StartTime:  s.now(),
	}
	if err := s.details.Create(ctx, detail); err != nil {
		s.logger.Error("failed to create task detail, running without it",
			zap.Uint64("task_id", t.ID),
			zap.Error(err))
		return nil
	}
	return detail
}

// finishDetail closes the detail as FINISH when jobErr is nil, otherwise as
// ERROR. A non-empty reason replaces the error message of a canceled run.
func (s *Scheduler) finishDetail(ctx context.Context, detail *taskdetail.TaskDetail, end time.Time, jobErr error, reason string) {
	if detail == nil {
		return
	}
	err := s.closeDetail(ctx, detail, func(d *taskdetail.TaskDetail) error {
		if jobErr == nil {
			return d.Finish(end)
		}
		msg := jobErr.Error()
		if reason != "" && errors.Is(jobErr, context.Canceled) {
			msg = reason
		}
		return d.Fail(end, msg)
	})
	if err != nil {
		s.logger.Error("failed to close task detail",
			zap.Uint64("detail_id", detail.ID),
			zap.Error(err))
	}
}

func (s *Scheduler) invoke(ctx context.Context, t *task.Task) (err error) {
	fn, ok := s.registry.Lookup(t.ExecKey)
	if !ok {
		return fmt.Errorf("%w: %q", ErrJobNotRegistered, t.ExecKey)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panic: %v", r)
		}
	}()
	return fn(ctx)
}

func detailStart(detail *taskdetail.TaskDetail, fallback time.Time) time.Time {
	if detail == nil {
		return fallback
	}
	return detail.StartTime
}
