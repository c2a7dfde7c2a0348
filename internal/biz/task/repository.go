package task

import (
	"context"
	"time"

	"github.com/samber/mo"
)

type Repo interface {
	// CreateIfAbsent 按 name 幂等插入, 已存在时不写入并把库中的记录回填到 task
	CreateIfAbsent(ctx context.Context, task *Task) (created bool, err error)
	GetByID(ctx context.Context, id uint64) (*Task, error)
	GetByName(ctx context.Context, name string) (*Task, error)
	List(ctx context.Context, filter *TaskFilter) ([]*Task, error)

	// ListDue NOT_STARTED 且 next_start_time <= before 的任务
	ListDue(ctx context.Context, before time.Time) ([]*Task, error)

	// ListRecoverable PENDING/DOING 且持有节点不在线, 或 ERROR, 并且 updated_at < staleBefore
	ListRecoverable(ctx context.Context, liveSince, staleBefore time.Time) ([]*Task, error)

	// UpdateWithVersion writes every mutable field of task where
	// version = expectedVersion. On success task.Version is bumped.
	UpdateWithVersion(ctx context.Context, task *Task, expectedVersion int64) (bool, error)

	// ResetForNode 节点重启时释放自己持有的 PENDING/DOING 任务
	ResetForNode(ctx context.Context, nodeID string) (int64, error)
}

type TaskFilter struct {
	Status mo.Option[TaskStatus]
	NodeID mo.Option[string]
}
