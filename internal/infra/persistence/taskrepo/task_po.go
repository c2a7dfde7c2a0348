package taskrepo

import (
	"time"

	domain "github.com/jobs/dcron/internal/biz/task"
	"github.com/jobs/dcron/internal/infra/persistence/commonrepo"
)

type TaskPo struct {
	commonrepo.VersionedMode
	Name           string            `gorm:"column:name;uniqueIndex;size:255;not null"`                    // name唯一, 节点启动时注册的幂等键
	CronExpression string            `gorm:"column:cron_expression;size:100;not null"`                     // cron表达式
	ExecKey        string            `gorm:"column:exec_key;size:255;not null"`                            // job注册表的key
	Status         domain.TaskStatus `gorm:"column:status;size:32;not null;index:idx_task_due,priority:1"` // 任务状态
	NodeID         string            `gorm:"column:node_id;size:128;index"`                                // 持有节点
	SuccessCount   int64             `gorm:"column:success_count;not null;default:0"`
	FailCount      int64             `gorm:"column:fail_count;not null;default:0"`
	FirstStartTime *time.Time        `gorm:"column:first_start_time"`
	NextStartTime  *time.Time        `gorm:"column:next_start_time;index:idx_task_due,priority:2"` // 为空表示没有下一次触发
}

func (t *TaskPo) TableName() string {
	return "jobs_task"
}
