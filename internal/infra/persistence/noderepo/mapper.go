package noderepo

import (
	domain "github.com/jobs/dcron/internal/biz/node"
	"github.com/jobs/dcron/internal/infra/persistence/commonrepo"
)

func (po *NodePo) ToDomain() *domain.Node {
	return &domain.Node{
		ID:          po.ID,
		CreatedAt:   po.CreatedAt,
		UpdatedAt:   po.UpdatedAt,
		NodeID:      po.NodeID,
		WorkerID:    po.WorkerID,
		Status:      po.Status,
		Weight:      po.Weight,
		HeartbeatAt: po.HeartbeatAt,
		NotifyCmd:   po.NotifyCmd,
		NotifyValue: po.NotifyValue,
		Version:     po.Version,
	}
}

func (po *NodePo) FromDomain(d *domain.Node) *NodePo {
	return &NodePo{
		VersionedMode: commonrepo.VersionedMode{
			Mode: commonrepo.Mode{
				ID:        d.ID,
				CreatedAt: d.CreatedAt,
				UpdatedAt: d.UpdatedAt,
			},
			Version: d.Version,
		},
		NodeID:      d.NodeID,
		WorkerID:    d.WorkerID,
		Status:      d.Status,
		Weight:      d.Weight,
		HeartbeatAt: d.HeartbeatAt,
		NotifyCmd:   d.NotifyCmd,
		NotifyValue: d.NotifyValue,
	}
}
