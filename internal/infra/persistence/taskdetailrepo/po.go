package taskdetailrepo

import (
	"time"

	domain "github.com/jobs/dcron/internal/biz/taskdetail"
	"github.com/jobs/dcron/internal/infra/persistence/commonrepo"
)

type TaskDetailPo struct {
	commonrepo.VersionedMode
	TaskID       uint64              `gorm:"column:task_id;not null;index:idx_detail_fire,priority:1"`
	NodeID       string              `gorm:"column:node_id;size:128;not null"`
	FireTime     time.Time           `gorm:"column:fire_time;index:idx_detail_fire,priority:2"` // 触发时间
	RetryCount   int                 `gorm:"column:retry_count;not null;default:0"`
	Status       domain.DetailStatus `gorm:"column:status;size:16;not null;index"`
	StartTime    time.Time           `gorm:"column:start_time;index"`
	EndTime      *time.Time          `gorm:"column:end_time"`
	ErrorMessage string              `gorm:"column:error_message;type:text"` // 失败时的错误信息
}

func (TaskDetailPo) TableName() string {
	return "jobs_task_detail"
}
