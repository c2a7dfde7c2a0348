package memrepo

import (
	"context"
	"sort"
	"time"

	"github.com/jobs/dcron/internal/biz/taskdetail"
)

type detailRepo struct {
	s *Store
}

func cloneDetail(d *taskdetail.TaskDetail) *taskdetail.TaskDetail {
	c := *d
	if d.EndTime != nil {
		end := *d.EndTime
		c.EndTime = &end
	}
	return &c
}

func (r *detailRepo) Create(_ context.Context, d *taskdetail.TaskDetail) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if d.ID == 0 {
		d.ID = r.s.allocID()
	}
	now := r.s.now()
	d.CreatedAt, d.UpdatedAt = now, now
	r.s.details[d.ID] = cloneDetail(d)
	return nil
}

func (r *detailRepo) GetByID(_ context.Context, id uint64) (*taskdetail.TaskDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if d, ok := r.s.details[id]; ok {
		return cloneDetail(d), nil
	}
	return nil, nil
}

func (r *detailRepo) UpdateWithVersion(_ context.Context, d *taskdetail.TaskDetail, expectedVersion int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.details[d.ID]
	if !ok || stored.Version != expectedVersion {
		return false, nil
	}
	next := cloneDetail(stored)
	next.Status = d.Status
	next.EndTime = d.EndTime
	next.ErrorMessage = d.ErrorMessage
	next.UpdatedAt = r.s.now()
	next.Version = expectedVersion + 1
	r.s.details[d.ID] = next
	d.Version = next.Version
	return true, nil
}

func (r *detailRepo) List(_ context.Context, filter *taskdetail.ListFilter, offset, limit int) ([]*taskdetail.TaskDetail, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var all []*taskdetail.TaskDetail
	for _, d := range r.s.details {
		if d.TaskID != filter.TaskID {
			continue
		}
		if filter.Status.IsPresent() && d.Status != filter.Status.MustGet() {
			continue
		}
		all = append(all, cloneDetail(d))
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].StartTime.Equal(all[j].StartTime) {
			return all[i].ID > all[j].ID
		}
		return all[i].StartTime.After(all[j].StartTime)
	})

	total := int64(len(all))
	if offset > len(all) {
		offset = len(all)
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func (r *detailRepo) CountAttempts(_ context.Context, taskID uint64, fireTime time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, d := range r.s.details {
		if d.TaskID == taskID && d.FireTime.Equal(fireTime) {
			n++
		}
	}
	return n, nil
}
