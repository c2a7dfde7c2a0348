package taskrepo

import (
	domain "github.com/jobs/dcron/internal/biz/task"
	"github.com/jobs/dcron/internal/infra/persistence/commonrepo"
)

func (po *TaskPo) FromDomain(in *domain.Task) *TaskPo {
	return &TaskPo{
		VersionedMode: commonrepo.VersionedMode{
			Mode: commonrepo.Mode{
				ID:        in.ID,
				CreatedAt: in.CreatedAt,
				UpdatedAt: in.UpdatedAt,
			},
			Version: in.Version,
		},
		Name:           in.Name,
		CronExpression: in.CronExpression,
		ExecKey:        in.ExecKey,
		Status:         in.Status,
		NodeID:         in.NodeID,
		SuccessCount:   in.SuccessCount,
		FailCount:      in.FailCount,
		FirstStartTime: in.FirstStartTime,
		NextStartTime:  in.NextStartTime,
	}
}

func (po *TaskPo) ToDomain() *domain.Task {
	return &domain.Task{
		ID:             po.ID,
		CreatedAt:      po.CreatedAt,
		UpdatedAt:      po.UpdatedAt,
		Name:           po.Name,
		CronExpression: po.CronExpression,
		ExecKey:        po.ExecKey,
		Status:         po.Status,
		NodeID:         po.NodeID,
		SuccessCount:   po.SuccessCount,
		FailCount:      po.FailCount,
		FirstStartTime: po.FirstStartTime,
		NextStartTime:  po.NextStartTime,
		Version:        po.Version,
	}
}

// mutableColumns 乐观锁更新时写入的列, 不含 id/name/version
func mutableColumns(in *domain.Task) map[string]any {
	return map[string]any{
		"cron_expression":  in.CronExpression,
		"exec_key":         in.ExecKey,
		"status":           in.Status,
		"node_id":          in.NodeID,
		"success_count":    in.SuccessCount,
		"fail_count":       in.FailCount,
		"first_start_time": in.FirstStartTime,
		"next_start_time":  in.NextStartTime,
	}
}
