package taskdetailrepo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	domain "github.com/jobs/dcron/internal/biz/taskdetail"
	"github.com/jobs/dcron/internal/ids"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRepo(t *testing.T) domain.Repo {
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

	require.NoError(t, db.AutoMigrate(&TaskDetailPo{}))
	return NewMysqlRepositoryImpl(db)
}

func TestCloseDetailWithVersion(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	d := &domain.TaskDetail{
		ID:        ids.Next(),
		TaskID:    1,
		NodeID:    "a",
		FireTime:  start,
		Status:    domain.DetailStatusDoing,
		StartTime: start,
	}
	require.NoError(t, repo.Create(ctx, d))

	closed := *d
	require.NoError(t, closed.Fail(start.Add(time.Second), "boom"))
	ok, err := repo.UpdateWithVersion(ctx, &closed, d.Version)
	require.NoError(t, err)
	require.True(t, ok)

	stale := *d
	require.NoError(t, stale.Finish(start.Add(2*time.Second)))
	ok, err = repo.UpdateWithVersion(ctx, &stale, d.Version)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DetailStatusError, got.Status)
	assert.Equal(t, "boom", got.ErrorMessage)
	require.NotNil(t, got.EndTime)
}

func TestListAndCountAttempts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	fire := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		status := domain.DetailStatusFinish
		if i%2 == 1 {
			status = domain.DetailStatusError
		}
		require.NoError(t, repo.Create(ctx, &domain.TaskDetail{
			ID:        ids.Next(),
			TaskID:    9,
			NodeID:    "a",
			FireTime:  fire,
			Status:    status,
			StartTime: fire.Add(time.Duration(i) * time.Second),
		}))
	}
	require.NoError(t, repo.Create(ctx, &domain.TaskDetail{ID: ids.Next(), TaskID: 10, FireTime: fire, StartTime: fire, Status: domain.DetailStatusDoing}))

	page, total, err := repo.List(ctx, &domain.ListFilter{TaskID: 9}, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, page, 2)
	assert.True(t, page[0].StartTime.After(page[1].StartTime))

	failed, total, err := repo.List(ctx, &domain.ListFilter{TaskID: 9, Status: mo.Some(domain.DetailStatusError)}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, failed, 2)

	n, err := repo.CountAttempts(ctx, 9, fire)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
}
