package taskrepo

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/jobs/dcron/internal/biz/node"
	domain "github.com/jobs/dcron/internal/biz/task"
	"github.com/jobs/dcron/internal/ids"
	"github.com/jobs/dcron/internal/infra/persistence/noderepo"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&TaskPo{}, &noderepo.NodePo{}))
	return db
}

func newTask(name string, next time.Time) *domain.Task {
	return &domain.Task{
		ID:             ids.Next(),
		Name:           name,
		CronExpression: "0 * * * * ?",
		ExecKey:        "noop",
		Status:         domain.TaskStatusNotStarted,
		FirstStartTime: &next,
		NextStartTime:  &next,
	}
}

func TestCreateIfAbsentIsIdempotent(t *testing.T) {
	repo := NewMysqlRepositoryImpl(newTestDB(t))
	ctx := context.Background()
	next := time.Now().UTC().Truncate(time.Second)

	first := newTask("t1", next)
	created, err := repo.CreateIfAbsent(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)

	again := newTask("t1", next.Add(time.Hour))
	again.CronExpression = "0 0 * * * ?"
	created, err = repo.CreateIfAbsent(ctx, again)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, "0 * * * * ?", again.CronExpression)

	all, err := repo.List(ctx, &domain.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUpdateWithVersionExactlyOneWinner(t *testing.T) {
	repo := NewMysqlRepositoryImpl(newTestDB(t))
	ctx := context.Background()

	tk := newTask("race", time.Now().UTC())
	_, err := repo.CreateIfAbsent(ctx, tk)
	require.NoError(t, err)
	before := tk.Version

	var wg sync.WaitGroup
	results := make([]bool, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c := tk.Clone()
			c.Claim(fmt.Sprintf("node-%d", i))
			ok, err := repo.UpdateWithVersion(ctx, c, before)
			assert.NoError(t, err)
			results[i] = ok
		}(i)
	}
	wg.Wait()

	assert.NotEqual(t, results[0], results[1])
	stored, err := repo.GetByID(ctx, tk.ID)
	require.NoError(t, err)
	assert.Greater(t, stored.Version, before)
	assert.Equal(t, domain.TaskStatusPending, stored.Status)
}

func TestListDue(t *testing.T) {
	repo := NewMysqlRepositoryImpl(newTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	soon := newTask("soon", now.Add(10*time.Second))
	later := newTask("later", now.Add(time.Hour))
	claimed := newTask("claimed", now.Add(5*time.Second))
	claimed.Status = domain.TaskStatusPending
	for _, tk := range []*domain.Task{soon, later, claimed} {
		_, err := repo.CreateIfAbsent(ctx, tk)
		require.NoError(t, err)
	}

	due, err := repo.ListDue(ctx, now.Add(30*time.Second))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "soon", due[0].Name)
}

func TestListRecoverable(t *testing.T) {
	db := newTestDB(t)
	repo := NewMysqlRepositoryImpl(db)
	nodes := noderepo.NewMysqlRepositoryImpl(db)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, nodes.Register(ctx, &node.Node{NodeID: "alive", Weight: 1, HeartbeatAt: now}))
	require.NoError(t, nodes.Register(ctx, &node.Node{NodeID: "dead", Weight: 1, HeartbeatAt: now.Add(-time.Hour)}))

	mk := func(name, owner string, status domain.TaskStatus) *domain.Task {
		tk := newTask(name, now)
		tk.NodeID = owner
		tk.Status = status
		_, err := repo.CreateIfAbsent(ctx, tk)
		require.NoError(t, err)
		return tk
	}
	mk("doing-dead", "dead", domain.TaskStatusDoing)
	mk("pending-dead", "dead", domain.TaskStatusPending)
	mk("doing-alive", "alive", domain.TaskStatusDoing)
	mk("error", "", domain.TaskStatusError)
	mk("idle", "", domain.TaskStatusNotStarted)

	liveSince := now.Add(-time.Minute)
	got, err := repo.ListRecoverable(ctx, liveSince, now.Add(time.Minute))
	require.NoError(t, err)
	names := make([]string, 0, len(got))
	for _, tk := range got {
		names = append(names, tk.Name)
	}
	assert.ElementsMatch(t, []string{"doing-dead", "pending-dead", "error"}, names)

	none, err := repo.ListRecoverable(ctx, liveSince, now.Add(-time.Minute))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestResetForNode(t *testing.T) {
	repo := NewMysqlRepositoryImpl(newTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	for i, status := range []domain.TaskStatus{domain.TaskStatusDoing, domain.TaskStatusPending, domain.TaskStatusStop} {
		tk := newTask(fmt.Sprintf("t%d", i), now)
		tk.NodeID = "me"
		tk.Status = status
		_, err := repo.CreateIfAbsent(ctx, tk)
		require.NoError(t, err)
	}

	n, err := repo.ResetForNode(ctx, "me")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	idle, err := repo.List(ctx, &domain.TaskFilter{Status: mo.Some(domain.TaskStatusNotStarted)})
	require.NoError(t, err)
	assert.Len(t, idle, 2)
	for _, tk := range idle {
		assert.Empty(t, tk.NodeID)
		assert.Equal(t, int64(1), tk.Version)
	}
}
