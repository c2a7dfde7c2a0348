package taskdetail

import (
	"context"
	"time"

	"github.com/samber/mo"
)

type Repo interface {
	Create(ctx context.Context, detail *TaskDetail) error
	GetByID(ctx context.Context, id uint64) (*TaskDetail, error)

	// UpdateWithVersion 以 version 做乐观锁更新
	UpdateWithVersion(ctx context.Context, detail *TaskDetail, expectedVersion int64) (bool, error)

	// List 按 start_time 倒序分页
	List(ctx context.Context, filter *ListFilter, offset, limit int) ([]*TaskDetail, int64, error)

	// CountAttempts 同一任务同一触发时间已有的执行记录数
	CountAttempts(ctx context.Context, taskID uint64, fireTime time.Time) (int64, error)
}

type ListFilter struct {
	TaskID uint64
	Status mo.Option[DetailStatus]
}
