package request

import (
	"github.com/jobs/dcron/internal/biz/task"
	"github.com/jobs/dcron/internal/biz/taskdetail"
)

// GetTasksRequest 获取任务列表请求
type GetTasksRequest struct {
	Status task.TaskStatus `form:"status" binding:"omitempty"`
	NodeID string          `form:"node_id" binding:"omitempty"`
}

// EditCronRequest 修改cron请求
type EditCronRequest struct {
	CronExpression string `json:"cron_expression" binding:"required"`
}

// ListTaskDetailsRequest 执行记录分页请求
type ListTaskDetailsRequest struct {
	Offset int                     `form:"offset" binding:"omitempty,min=0"`
	Limit  int                     `form:"limit" binding:"omitempty,min=1,max=200"`
	Status taskdetail.DetailStatus `form:"status" binding:"omitempty"`
}
