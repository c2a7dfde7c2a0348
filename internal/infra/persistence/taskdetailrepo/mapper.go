package taskdetailrepo

import (
	domain "github.com/jobs/dcron/internal/biz/taskdetail"
	"github.com/jobs/dcron/internal/infra/persistence/commonrepo"
)

func (po *TaskDetailPo) FromDomain(in *domain.TaskDetail) *TaskDetailPo {
	return &TaskDetailPo{
		VersionedMode: commonrepo.VersionedMode{
			Mode: commonrepo.Mode{
				ID:        in.ID,
				CreatedAt: in.CreatedAt,
				UpdatedAt: in.UpdatedAt,
			},
			Version: in.Version,
		},
		TaskID:       in.TaskID,
		NodeID:       in.NodeID,
		FireTime:     in.FireTime,
		RetryCount:   in.RetryCount,
		Status:       in.Status,
		StartTime:    in.StartTime,
		EndTime:      in.EndTime,
		ErrorMessage: in.ErrorMessage,
	}
}

func (po *TaskDetailPo) ToDomain() *domain.TaskDetail {
	return &domain.TaskDetail{
		ID:           po.ID,
		CreatedAt:    po.CreatedAt,
		UpdatedAt:    po.UpdatedAt,
		TaskID:       po.TaskID,
		NodeID:       po.NodeID,
		FireTime:     po.FireTime,
		RetryCount:   po.RetryCount,
		Status:       po.Status,
		StartTime:    po.StartTime,
		EndTime:      po.EndTime,
		ErrorMessage: po.ErrorMessage,
		Version:      po.Version,
	}
}
