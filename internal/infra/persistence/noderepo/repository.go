package noderepo

import (
	"context"
	"time"

	"github.com/google/wire"
	domain "github.com/jobs/dcron/internal/biz/node"
	"github.com/jobs/dcron/internal/ids"
	"github.com/jobs/dcron/internal/infra/persistence/commonrepo"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var Provider = wire.NewSet(NewMysqlRepositoryImpl)

type MysqlRepositoryImpl struct {
	commonrepo.DefaultRepo
}

func NewMysqlRepositoryImpl(db commonrepo.DB) domain.Repo {
	return &MysqlRepositoryImpl{
		DefaultRepo: commonrepo.NewDefaultRepo(db),
	}
}

func (r *MysqlRepositoryImpl) Register(ctx context.Context, n *domain.Node) error {
	if n.ID == 0 {
		n.ID = ids.Next()
	}
	n.Status = domain.NodeStatusEnable
	n.NotifyCmd = domain.NotifyNone
	n.NotifyValue = ""

	po := new(NodePo).FromDomain(n)
	// upsert 与回读放在同一事务内, 回读到的是本次写入的版本
	return r.Execute(ctx, func(ctx context.Context) error {
		err := r.Db(ctx).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "node_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"status":       domain.NodeStatusEnable,
				"worker_id":    n.WorkerID,
				"weight":       n.Weight,
				"heartbeat_at": n.HeartbeatAt,
				"notify_cmd":   domain.NotifyNone,
				"notify_value": "",
				"version":      gorm.Expr("version + 1"),
			}),
		}).Create(po).Error
		if err != nil {
			return err
		}

		stored, err := r.GetByNodeID(ctx, n.NodeID)
		if err != nil {
			return err
		} else if stored == nil {
			return domain.ErrNodeNotFound
		}
		*n = *stored
		return nil
	})
}

func (r *MysqlRepositoryImpl) GetByNodeID(ctx context.Context, nodeID string) (*domain.Node, error) {
	var po NodePo
	found, err := r.First(ctx, &po, "node_id = ?", nodeID)
	if err != nil || !found {
		return nil, err
	}
	return po.ToDomain(), nil
}

func (r *MysqlRepositoryImpl) List(ctx context.Context) ([]*domain.Node, error) {
	var pos []*NodePo
	if err := r.Db(ctx).Order("node_id").Find(&pos).Error; err != nil {
		return nil, err
	}
	return toDomains(pos), nil
}

func (r *MysqlRepositoryImpl) ListLive(ctx context.Context, since time.Time) ([]*domain.Node, error) {
	var pos []*NodePo
	err := r.Db(ctx).
		Where("status = ? AND heartbeat_at >= ?", domain.NodeStatusEnable, since).
		Order("node_id").
		Find(&pos).Error
	if err != nil {
		return nil, err
	}
	return toDomains(pos), nil
}

func (r *MysqlRepositoryImpl) Heartbeat(ctx context.Context, nodeID string, at time.Time) error {
	return r.Db(ctx).Model(&NodePo{}).
		Where("node_id = ?", nodeID).
		Updates(map[string]any{"heartbeat_at": at}).Error
}

func (r *MysqlRepositoryImpl) UpdateStatus(ctx context.Context, nodeID string, status domain.NodeStatus) error {
	return r.Db(ctx).Model(&NodePo{}).
		Where("node_id = ?", nodeID).
		Updates(map[string]any{"status": status}).Error
}

func (r *MysqlRepositoryImpl) SetNotify(ctx context.Context, nodeID string, cmd domain.NotifyCmd, value string) (bool, error) {
	tx := r.Db(ctx).Model(&NodePo{}).
		Where("node_id = ? AND notify_cmd = ?", nodeID, domain.NotifyNone).
		Updates(map[string]any{
			"notify_cmd":   cmd,
			"notify_value": value,
			"version":      gorm.Expr("version + 1"),
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}

func (r *MysqlRepositoryImpl) ResetNotify(ctx context.Context, nodeID string, expectedVersion int64) (bool, error) {
	tx := r.Db(ctx).Model(&NodePo{}).
		Where("node_id = ? AND version = ?", nodeID, expectedVersion).
		Updates(map[string]any{
			"notify_cmd":   domain.NotifyNone,
			"notify_value": "",
			"version":      gorm.Expr("version + 1"),
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}

func toDomains(pos []*NodePo) []*domain.Node {
	return lo.Map(pos, func(po *NodePo, _ int) *domain.Node {
		return po.ToDomain()
	})
}
