package mapper

import (
	"github.com/samber/lo"
	"github.com/spf13/cast"

	"github.com/jobs/dcron/internal/biz/task"
	"github.com/jobs/dcron/internal/biz/taskdetail"
	"github.com/jobs/dcron/internal/dto/response"
)

// ToTaskResponse 将任务实体转换为响应DTO
func ToTaskResponse(t *task.Task) response.TaskResponse {
	return response.TaskResponse{
		ID:             cast.ToString(t.ID),
		Name:           t.Name,
		CronExpression: t.CronExpression,
		ExecKey:        t.ExecKey,
		Status:         t.Status,
		NodeID:         t.NodeID,
		SuccessCount:   t.SuccessCount,
		FailCount:      t.FailCount,
		FirstStartTime: t.FirstStartTime,
		NextStartTime:  t.NextStartTime,
		Version:        t.Version,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

func ToTaskListResponse(tasks []*task.Task) []response.TaskResponse {
	return lo.Map(tasks, func(t *task.Task, _ int) response.TaskResponse {
		return ToTaskResponse(t)
	})
}

// ToTaskDetailResponse 将执行记录转换为响应DTO
func ToTaskDetailResponse(d *taskdetail.TaskDetail) response.TaskDetailResponse {
	return response.TaskDetailResponse{
		ID:           cast.ToString(d.ID),
		TaskID:       cast.ToString(d.TaskID),
		NodeID:       d.NodeID,
		FireTime:     d.FireTime,
		RetryCount:   d.RetryCount,
		Status:       d.Status,
		StartTime:    d.StartTime,
		EndTime:      d.EndTime,
		ErrorMessage: d.ErrorMessage,
	}
}

func ToTaskDetailListResponse(details []*taskdetail.TaskDetail) []response.TaskDetailResponse {
	return lo.Map(details, func(d *taskdetail.TaskDetail, _ int) response.TaskDetailResponse {
		return ToTaskDetailResponse(d)
	})
}
