package memrepo

import (
	"context"
	"sort"
	"time"

	"github.com/jobs/dcron/internal/biz/task"
	"github.com/samber/lo"
)

type taskRepo struct {
	s *Store
}

func (r *taskRepo) CreateIfAbsent(_ context.Context, t *task.Task) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.tasks {
		if existing.Name == t.Name {
			*t = *existing.Clone()
			return false, nil
		}
	}
	if t.ID == 0 {
		t.ID = r.s.allocID()
	}
	now := r.s.now()
	t.CreatedAt, t.UpdatedAt = now, now
	r.s.tasks[t.ID] = t.Clone()
	return true, nil
}

func (r *taskRepo) GetByID(_ context.Context, id uint64) (*task.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if t, ok := r.s.tasks[id]; ok {
		return t.Clone(), nil
	}
	return nil, nil
}

func (r *taskRepo) GetByName(_ context.Context, name string) (*task.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.tasks {
		if t.Name == name {
			return t.Clone(), nil
		}
	}
	return nil, nil
}

func (r *taskRepo) List(_ context.Context, filter *task.TaskFilter) ([]*task.Task, error) {
	return r.collect(func(t *task.Task) bool {
		if filter == nil {
			return true
		}
		if filter.Status.IsPresent() && t.Status != filter.Status.MustGet() {
			return false
		}
		if filter.NodeID.IsPresent() && t.NodeID != filter.NodeID.MustGet() {
			return false
		}
		return true
	}, byID), nil
}

func (r *taskRepo) ListDue(_ context.Context, before time.Time) ([]*task.Task, error) {
	return r.collect(func(t *task.Task) bool {
		return t.Status == task.TaskStatusNotStarted &&
			t.NextStartTime != nil && !t.NextStartTime.After(before)
	}, byNextStart), nil
}

func (r *taskRepo) ListRecoverable(_ context.Context, liveSince, staleBefore time.Time) ([]*task.Task, error) {
	r.s.mu.Lock()
	live := make(map[string]bool, len(r.s.nodes))
	for id, n := range r.s.nodes {
		live[id] = n.IsLive(liveSince)
	}
	r.s.mu.Unlock()

	return r.collect(func(t *task.Task) bool {
		if !t.UpdatedAt.Before(staleBefore) {
			return false
		}
		switch t.Status {
		case task.TaskStatusPending, task.TaskStatusDoing:
			return !live[t.NodeID]
		case task.TaskStatusError:
			return true
		}
		return false
	}, byID), nil
}

func (r *taskRepo) UpdateWithVersion(_ context.Context, t *task.Task, expectedVersion int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.tasks[t.ID]
	if !ok || stored.Version != expectedVersion {
		return false, nil
	}
	next := t.Clone()
	next.Name = stored.Name
	next.CreatedAt = stored.CreatedAt
	next.UpdatedAt = r.s.now()
	next.Version = expectedVersion + 1
	r.s.tasks[t.ID] = next

	t.Version = next.Version
	t.UpdatedAt = next.UpdatedAt
	return true, nil
}

func (r *taskRepo) ResetForNode(_ context.Context, nodeID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for _, t := range r.s.tasks {
		if t.NodeID != nodeID {
			continue
		}
		if t.Status != task.TaskStatusPending && t.Status != task.TaskStatusDoing {
			continue
		}
		t.Release()
		t.Version++
		t.UpdatedAt = r.s.now()
		n++
	}
	return n, nil
}

func (r *taskRepo) collect(match func(*task.Task) bool, less func(a, b *task.Task) bool) []*task.Task {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := lo.FilterMap(lo.Values(r.s.tasks), func(t *task.Task, _ int) (*task.Task, bool) {
		if !match(t) {
			return nil, false
		}
		return t.Clone(), true
	})
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func byID(a, b *task.Task) bool { return a.ID < b.ID }

func byNextStart(a, b *task.Task) bool {
	if a.NextStartTime.Equal(*b.NextStartTime) {
		return a.ID < b.ID
	}
	return a.NextStartTime.Before(*b.NextStartTime)
}
