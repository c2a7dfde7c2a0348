package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobs/dcron/internal/biz/task"
	"github.com/jobs/dcron/internal/infra/persistence/memrepo"
)

// contendedRepo loses every conditional update.
type contendedRepo struct {
	task.Repo
	attempts int
}

func (r *contendedRepo) UpdateWithVersion(context.Context, *task.Task, int64) (bool, error) {
	r.attempts++
	return false, nil
}

func TestUpdateTaskGivesUpAfterBoundedAttempts(t *testing.T) {
	store := memrepo.New()
	reg := NewRegistry()
	reg.Register("report", noop)
	s := newTestScheduler(t, store, testOptions("node-a"), reg)

	tk, err := s.RegisterTask(context.Background(), "report", "0 0 1 * * ?", "report")
	require.NoError(t, err)

	repo := &contendedRepo{Repo: store.Tasks()}
	s.tasks = repo
	err = s.RequestStop(context.Background(), tk.ID)
	assert.ErrorIs(t, err, ErrVersionConflict)
	assert.Equal(t, maxUpdateAttempts, repo.attempts)
}

func TestUpdateTaskRetriesAfterConcurrentWrite(t *testing.T) {
	store := memrepo.New()
	reg := NewRegistry()
	reg.Register("report", noop)
	s := newTestScheduler(t, store, testOptions("node-a"), reg)

	tk, err := s.RegisterTask(context.Background(), "report", "0 0 1 * * ?", "report")
	require.NoError(t, err)

	stale := tk.Clone()
	bumped := tk.Clone()
	bumped.SuccessCount = 5
	ok, err := store.Tasks().UpdateWithVersion(context.Background(), bumped, tk.Version)
	require.NoError(t, err)
	require.True(t, ok)

	updated, err := s.updateTask(context.Background(), tk.ID, stale, func(cur *task.Task) error {
		cur.FailCount++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), updated.SuccessCount)
	assert.Equal(t, int64(1), updated.FailCount)
	assert.Equal(t, bumped.Version+1, updated.Version)
}
