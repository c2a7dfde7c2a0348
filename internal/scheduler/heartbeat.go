package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/jobs/dcron/internal/biz/node"
	"github.com/jobs/dcron/internal/biz/task"
)

// runHeartbeat 每个周期执行一次 tick, 收到提醒时立即处理通知
func (s *Scheduler) runHeartbeat(ctx context.Context, nudge <-chan struct{}, interval time.Duration, tick func(context.Context) error) {
	defer s.wg.Done()
	s.logger.Info("heartbeat started", zap.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.guard(ctx, "heartbeat", tick)
		case <-nudge:
			s.guard(ctx, "notify", s.processNotify)
		case <-ctx.Done():
			return
		}
	}
}

// heartbeatOnce 刷新本节点心跳, 然后处理挂在本节点上的通知
func (s *Scheduler) heartbeatOnce(ctx context.Context) error {
	if err := s.nodes.Heartbeat(ctx, s.nodeID, s.now()); err != nil {
		return fmt.Errorf("failed to write heartbeat: %w", err)
	}
	return s.processNotify(ctx)
}

func (s *Scheduler) processNotify(ctx context.Context) error {
	self, err := s.nodes.GetByNodeID(ctx, s.nodeID)
	if err != nil {
		return fmt.Errorf("failed to load node: %w", err)
	}
	if self == nil || !self.HasNotify() {
		return nil
	}

	taskID := cast.ToUint64(self.NotifyValue)
	log := s.logger.With(
		zap.String("cmd", string(self.NotifyCmd)),
		zap.Uint64("task_id", taskID))

	switch self.NotifyCmd {
	case node.NotifyStop:
		s.handleStop(ctx, taskID)
	case node.NotifyStart:
		if !s.queue.Reschedule(taskID, s.now()) {
			log.Info("start notify for a task not queued here")
		}
	case node.NotifyEdit:
		s.queue.Remove(taskID)
	default:
		log.Warn("unknown notify command")
	}

	ok, err := s.nodes.ResetNotify(ctx, s.nodeID, self.Version)
	if err != nil {
		return fmt.Errorf("failed to reset notify: %w", err)
	}
	if !ok {
		log.Debug("notify already reset")
		return nil
	}
	log.Info("notify processed")
	return nil
}

// handleStop 取消在途任务并写 STOP. 任务已不在本节点运行时, 只要它还没被其他节点
// 跑起来, 同样写 STOP.
func (s *Scheduler) handleStop(ctx context.Context, taskID uint64) {
	running := s.handles.stop(taskID)
	if !running {
		s.queue.Remove(taskID)
	}

	_, err := s.updateTask(ctx, taskID, nil, func(cur *task.Task) error {
		switch cur.Status {
		case task.TaskStatusStop, task.TaskStatusFinish:
			return errSkipUpdate
		case task.TaskStatusDoing:
			if !running || !cur.IsOwnedBy(s.nodeID) {
				return errSkipUpdate
			}
		}
		cur.Stop()
		return nil
	})
	switch {
	case err == nil:
		s.logger.Info("task stopped", zap.Uint64("task_id", taskID), zap.Bool("was_running", running))
	case errors.Is(err, errSkipUpdate):
	default:
		s.logger.Error("failed to stop task", zap.Uint64("task_id", taskID), zap.Error(err))
	}
}
