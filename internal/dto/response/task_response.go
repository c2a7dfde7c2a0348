package response

import (
	"time"

	"github.com/jobs/dcron/internal/biz/task"
	"github.com/jobs/dcron/internal/biz/taskdetail"
)

// TaskResponse 任务响应
type TaskResponse struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	CronExpression string          `json:"cron_expression"`
	ExecKey        string          `json:"exec_key"`
	Status         task.TaskStatus `json:"status"`
	NodeID         string          `json:"node_id,omitempty"`
	SuccessCount   int64           `json:"success_count"`
	FailCount      int64           `json:"fail_count"`
	FirstStartTime *time.Time      `json:"first_start_time,omitempty"`
	NextStartTime  *time.Time      `json:"next_start_time,omitempty"`
	Version        int64           `json:"version"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// TaskDetailResponse 执行记录响应
type TaskDetailResponse struct {
	ID           string                  `json:"id"`
	TaskID       string                  `json:"task_id"`
	NodeID       string                  `json:"node_id"`
	FireTime     time.Time               `json:"fire_time"`
	RetryCount   int                     `json:"retry_count"`
	Status       taskdetail.DetailStatus `json:"status"`
	StartTime    time.Time               `json:"start_time"`
	EndTime      *time.Time              `json:"end_time,omitempty"`
	ErrorMessage string                  `json:"error_message,omitempty"`
}

// PageResponse 分页响应
type PageResponse[T any] struct {
	Items  []T   `json:"items"`
	Total  int64 `json:"total"`
	Offset int   `json:"offset"`
	Limit  int   `json:"limit"`
}
