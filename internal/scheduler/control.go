package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/mo"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/jobs/dcron/internal/biz/node"
	"github.com/jobs/dcron/internal/biz/task"
	"github.com/jobs/dcron/internal/biz/taskdetail"
	"github.com/jobs/dcron/internal/cronexpr"
)

// RegisterTask 按名称幂等注册任务. 名称已存在且 cron 不同时更新 cron.
func (s *Scheduler) RegisterTask(ctx context.Context, name, cron, key string) (*task.Task, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, task.ErrInvalidName
	}
	if err := cronexpr.Validate(cron); err != nil {
		return nil, fmt.Errorf("%w: %v", task.ErrInvalidCron, err)
	}
	if _, ok := s.registry.Lookup(key); !ok {
		return nil, fmt.Errorf("%w: %q", ErrJobNotRegistered, key)
	}

	next, err := cronexpr.Next(cron, s.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", task.ErrInvalidCron, err)
	}
	t := &task.Task{
		ID:             s.ids.Next(),
		Name:           name,
		CronExpression: cron,
		ExecKey:        key,
		FirstStartTime: next,
	}
	t.Reschedule(next)

	created, err := s.tasks.CreateIfAbsent(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("failed to register task: %w", err)
	}
	if created {
		s.logger.Info("task registered",
			zap.Uint64("task_id", t.ID),
			zap.String("name", name),
			zap.String("cron", cron),
			zap.Timep("next", next))
		return t, nil
	}
	if t.CronExpression != cron {
		s.logger.Info("task cron changed",
			zap.String("name", name),
			zap.String("from", t.CronExpression),
			zap.String("to", cron))
		return s.EditCron(ctx, t.ID, cron)
	}
	return t, nil
}

// EditCron 修改任务的 cron. 运行中的任务在结束时按新 cron 计算下次时间, 已停止的任务保持停止.
func (s *Scheduler) EditCron(ctx context.Context, taskID uint64, cron string) (*task.Task, error) {
	if err := cronexpr.Validate(cron); err != nil {
		return nil, fmt.Errorf("%w: %v", task.ErrInvalidCron, err)
	}

	var owner string
	updated, err := s.updateTask(ctx, taskID, nil, func(cur *task.Task) error {
		owner = ""
		cur.CronExpression = cron
		switch cur.Status {
		case task.TaskStatusDoing, task.TaskStatusStop:
			return nil
		case task.TaskStatusPending:
			owner = cur.NodeID
		}
		next, err := cronexpr.Next(cron, s.now())
		if err != nil {
			return fmt.Errorf("%w: %v", task.ErrInvalidCron, err)
		}
		cur.Reschedule(next)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if owner != "" {
		if err := s.notify(ctx, owner, node.NotifyEdit, taskID); err != nil {
			s.logger.Warn("edit notify not delivered, queued copy will be dropped on fire",
				zap.Uint64("task_id", taskID),
				zap.String("owner", owner),
				zap.Error(err))
		}
	}
	return updated, nil
}

// StartNow 立即触发一次. 已排队的任务通知持有节点提前派发, 其余任务下个抢占周期执行.
func (s *Scheduler) StartNow(ctx context.Context, taskID uint64) error {
	var owner string
	_, err := s.updateTask(ctx, taskID, nil, func(cur *task.Task) error {
		switch cur.Status {
		case task.TaskStatusDoing:
			return task.ErrTaskRunning
		case task.TaskStatusPending:
			owner = cur.NodeID
			return errSkipUpdate
		}
		now := s.now()
		cur.Release()
		cur.NextStartTime = &now
		return nil
	})
	if errors.Is(err, errSkipUpdate) {
		return s.notify(ctx, owner, node.NotifyStart, taskID)
	}
	if err != nil {
		return err
	}
	s.logger.Info("task scheduled to start now", zap.Uint64("task_id", taskID))
	return nil
}

// RequestStop 停止任务. 运行中的任务通过持有节点的通知槽取消, 其余直接写 STOP.
func (s *Scheduler) RequestStop(ctx context.Context, taskID uint64) error {
	var owner string
	_, err := s.updateTask(ctx, taskID, nil, func(cur *task.Task) error {
		owner = ""
		switch cur.Status {
		case task.TaskStatusDoing:
			owner = cur.NodeID
			return errSkipUpdate
		case task.TaskStatusStop:
			return errSkipUpdate
		case task.TaskStatusPending:
			owner = cur.NodeID
		}
		cur.Stop()
		return nil
	})
	switch {
	case err == nil:
		if owner == s.nodeID {
			s.queue.Remove(taskID)
		}
		s.logger.Info("task stopped", zap.Uint64("task_id", taskID))
		return nil
	case errors.Is(err, errSkipUpdate):
		if owner == "" {
			return nil
		}
		return s.notify(ctx, owner, node.NotifyStop, taskID)
	default:
		return err
	}
}

// notify 写入目标节点的通知槽, 并发出提醒让目标节点尽快处理
func (s *Scheduler) notify(ctx context.Context, nodeID string, cmd node.NotifyCmd, taskID uint64) error {
	ok, err := s.nodes.SetNotify(ctx, nodeID, cmd, cast.ToString(taskID))
	if err != nil {
		return fmt.Errorf("failed to set notify: %w", err)
	}
	if !ok {
		target, err := s.nodes.GetByNodeID(ctx, nodeID)
		if err != nil {
			return fmt.Errorf("failed to load node: %w", err)
		}
		if target == nil {
			return node.ErrNodeNotFound
		}
		return ErrNotifyBusy
	}

	ev := NotifyEvent{NodeID: nodeID, Cmd: cmd, TaskID: taskID, Source: s.nodeID}
	if err := s.bus.Publish(ctx, ev); err != nil {
		s.logger.Warn("failed to publish notify, target will poll it",
			zap.String("target", nodeID),
			zap.Error(err))
	}
	s.logger.Info("notify sent",
		zap.String("target", nodeID),
		zap.String("cmd", string(cmd)),
		zap.Uint64("task_id", taskID))
	return nil
}

func (s *Scheduler) GetTask(ctx context.Context, taskID uint64) (*task.Task, error) {
	t, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, task.ErrTaskNotFound
	}
	return t, nil
}

func (s *Scheduler) ListTasks(ctx context.Context, filter *task.TaskFilter) ([]*task.Task, error) {
	if filter == nil {
		filter = &task.TaskFilter{}
	}
	return s.tasks.List(ctx, filter)
}

func (s *Scheduler) ListNodes(ctx context.Context) ([]*node.Node, error) {
	return s.nodes.List(ctx)
}

// ListTaskDetails 任务的执行记录, 按开始时间倒序
func (s *Scheduler) ListTaskDetails(ctx context.Context, taskID uint64, status mo.Option[taskdetail.DetailStatus], offset, limit int) ([]*taskdetail.TaskDetail, int64, error) {
	if _, err := s.GetTask(ctx, taskID); err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.details.List(ctx, &taskdetail.ListFilter{TaskID: taskID, Status: status}, offset, limit)
}

// LiveSince 当前在线判定的起点, 心跳早于该时间的节点视为离线
func (s *Scheduler) LiveSince() time.Time {
	return s.liveSince(s.now())
}
