package noderepo

import (
	"time"

	domain "github.com/jobs/dcron/internal/biz/node"
	"github.com/jobs/dcron/internal/infra/persistence/commonrepo"
)

type NodePo struct {
	commonrepo.VersionedMode
	NodeID      string            `gorm:"column:node_id;size:128;uniqueIndex;not null"`
	WorkerID    uint16            `gorm:"column:worker_id;not null;default:0"`
	Status      domain.NodeStatus `gorm:"column:status;size:16;not null"`
	Weight      int               `gorm:"column:weight;not null;default:1"`
	HeartbeatAt time.Time         `gorm:"column:heartbeat_at;index"`
	NotifyCmd   domain.NotifyCmd  `gorm:"column:notify_cmd;size:16;not null;default:'NO_NOTIFY'"` // 其他节点写入, 本节点处理后复位
	NotifyValue string            `gorm:"column:notify_value;size:64"`
}

func (NodePo) TableName() string {
	return "jobs_node"
}
