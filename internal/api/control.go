package api

import (
	"context"
	"time"

	"github.com/samber/mo"

	"github.com/jobs/dcron/internal/biz/node"
	"github.com/jobs/dcron/internal/biz/task"
	"github.com/jobs/dcron/internal/biz/taskdetail"
	"github.com/jobs/dcron/internal/scheduler"
)

// Control 调度节点对外暴露的控制操作
type Control interface {
	NodeID() string
	LiveSince() time.Time
	ListTasks(ctx context.Context, filter *task.TaskFilter) ([]*task.Task, error)
	GetTask(ctx context.Context, taskID uint64) (*task.Task, error)
	StartNow(ctx context.Context, taskID uint64) error
	RequestStop(ctx context.Context, taskID uint64) error
	EditCron(ctx context.Context, taskID uint64, cron string) (*task.Task, error)
	ListTaskDetails(ctx context.Context, taskID uint64, status mo.Option[taskdetail.DetailStatus], offset, limit int) ([]*taskdetail.TaskDetail, int64, error)
	ListNodes(ctx context.Context) ([]*node.Node, error)
}

var _ Control = (*scheduler.Scheduler)(nil)

// Pinger 存储连通性检查
type Pinger interface {
	Ping() error
}
