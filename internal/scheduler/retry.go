package scheduler

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jobs/dcron/internal/biz/task"
	"github.com/jobs/dcron/internal/biz/taskdetail"
)

const maxUpdateAttempts = 3

// updateTask applies mutate to the task and writes it with a conditional
// update, re-reading and retrying on version conflicts. current may be nil,
// in which case the first attempt reads the task as well. A mutate error
// aborts without writing and is returned unchanged.
func (s *Scheduler) updateTask(ctx context.Context, id uint64, current *task.Task, mutate func(t *task.Task) error) (*task.Task, error) {
	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		if current == nil || attempt > 1 {
			fresh, err := s.tasks.GetByID(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("failed to load task: %w", err)
			}
			if fresh == nil {
				return nil, task.ErrTaskNotFound
			}
			current = fresh
		}

		next := current.Clone()
		if err := mutate(next); err != nil {
			return current, err
		}
		ok, err := s.tasks.UpdateWithVersion(ctx, next, current.Version)
		if err != nil {
			return nil, fmt.Errorf("failed to update task: %w", err)
		}
		if ok {
			return next, nil
		}
		s.logger.Debug("task version conflict, retrying",
			zap.Uint64("task_id", id),
			zap.Int("attempt", attempt))
	}
	return nil, ErrVersionConflict
}

// closeDetail writes a closed detail, retrying on version conflicts.
func (s *Scheduler) closeDetail(ctx context.Context, detail *taskdetail.TaskDetail, apply func(d *taskdetail.TaskDetail) error) error {
	current := detail
	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		if attempt > 1 {
			fresh, err := s.details.GetByID(ctx, detail.ID)
			if err != nil {
				return fmt.Errorf("failed to load task detail: %w", err)
			}
			if fresh == nil {
				return fmt.Errorf("task detail %d disappeared", detail.ID)
			}
			current = fresh
		}

		next := *current
		if err := apply(&next); err != nil {
			if errors.Is(err, taskdetail.ErrDetailClosed) {
				return nil
			}
			return err
		}
		ok, err := s.details.UpdateWithVersion(ctx, &next, current.Version)
		if err != nil {
			return fmt.Errorf("failed to update task detail: %w", err)
		}
		if ok {
			*detail = next
			return nil
		}
	}
	return ErrVersionConflict
}
