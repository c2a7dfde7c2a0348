package taskrepo

import (
	"context"
	"time"

	"github.com/google/wire"
	"github.com/jobs/dcron/internal/biz/node"
	domain "github.com/jobs/dcron/internal/biz/task"
	"github.com/jobs/dcron/internal/infra/persistence/commonrepo"
	"github.com/jobs/dcron/internal/infra/persistence/noderepo"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var Provider = wire.NewSet(NewMysqlRepositoryImpl)

type MysqlRepositoryImpl struct {
	commonrepo.DefaultRepo
}

func NewMysqlRepositoryImpl(db commonrepo.DB) domain.Repo {
	return &MysqlRepositoryImpl{DefaultRepo: commonrepo.NewDefaultRepo(db)}
}

func (r *MysqlRepositoryImpl) CreateIfAbsent(ctx context.Context, task *domain.Task) (bool, error) {
	po := new(TaskPo).FromDomain(task)
	tx := r.Db(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(po)
	if tx.Error != nil {
		return false, tx.Error
	}
	if tx.RowsAffected == 1 {
		*task = *po.ToDomain()
		return true, nil
	}

	existing, err := r.GetByName(ctx, task.Name)
	if err != nil {
		return false, err
	} else if existing == nil {
		return false, domain.ErrTaskNotFound
	}
	*task = *existing
	return false, nil
}

func (r *MysqlRepositoryImpl) GetByName(ctx context.Context, name string) (*domain.Task, error) {
	var po TaskPo
	found, err := r.First(ctx, &po, "name = ?", name)
	if err != nil || !found {
		return nil, err
	}
	return po.ToDomain(), nil
}

func (r *MysqlRepositoryImpl) GetByID(ctx context.Context, id uint64) (*domain.Task, error) {
	var po TaskPo
	found, err := r.First(ctx, &po, "id = ?", id)
	if err != nil || !found {
		return nil, err
	}
	return po.ToDomain(), nil
}

func (r *MysqlRepositoryImpl) List(ctx context.Context, filter *domain.TaskFilter) ([]*domain.Task, error) {
	var pos []TaskPo
	query := r.Db(ctx).Model(&TaskPo{})
	if filter != nil {
		if filter.Status.IsPresent() {
			query = query.Where("status = ?", filter.Status.MustGet())
		}
		if filter.NodeID.IsPresent() {
			query = query.Where("node_id = ?", filter.NodeID.MustGet())
		}
	}
	if err := query.Order("id").Find(&pos).Error; err != nil {
		return nil, err
	}
	return toDomains(pos), nil
}

func (r *MysqlRepositoryImpl) ListDue(ctx context.Context, before time.Time) ([]*domain.Task, error) {
	var pos []TaskPo
	err := r.Db(ctx).
		Where("status = ? AND next_start_time IS NOT NULL AND next_start_time <= ?", domain.TaskStatusNotStarted, before).
		Order("next_start_time").
		Find(&pos).Error
	if err != nil {
		return nil, err
	}
	return toDomains(pos), nil
}

func (r *MysqlRepositoryImpl) ListRecoverable(ctx context.Context, liveSince, staleBefore time.Time) ([]*domain.Task, error) {
	liveNodes := r.Db(ctx).Model(&noderepo.NodePo{}).
		Select("node_id").
		Where("status = ? AND heartbeat_at >= ?", node.NodeStatusEnable, liveSince)

	orphaned := r.Db(ctx).
		Where("status IN ? AND node_id NOT IN (?)",
			[]domain.TaskStatus{domain.TaskStatusPending, domain.TaskStatusDoing}, liveNodes).
		Or("status = ?", domain.TaskStatusError)

	var pos []TaskPo
	err := r.Db(ctx).
		Where("updated_at < ?", staleBefore).
		Where(orphaned).
		Order("id").
		Find(&pos).Error
	if err != nil {
		return nil, err
	}
	return toDomains(pos), nil
}

func (r *MysqlRepositoryImpl) UpdateWithVersion(ctx context.Context, task *domain.Task, expectedVersion int64) (bool, error) {
	ok, err := r.CompareAndUpdate(ctx, &TaskPo{}, task.ID, expectedVersion, mutableColumns(task))
	if err != nil || !ok {
		return ok, err
	}
	task.Version = expectedVersion + 1
	return true, nil
}

func (r *MysqlRepositoryImpl) ResetForNode(ctx context.Context, nodeID string) (int64, error) {
	tx := r.Db(ctx).Model(&TaskPo{}).
		Where("node_id = ? AND status IN ?", nodeID,
			[]domain.TaskStatus{domain.TaskStatusPending, domain.TaskStatusDoing}).
		Updates(map[string]any{
			"status":  domain.TaskStatusNotStarted,
			"node_id": "",
			"version": gorm.Expr("version + 1"),
		})
	return tx.RowsAffected, tx.Error
}

func toDomains(pos []TaskPo) []*domain.Task {
	return lo.Map(pos, func(po TaskPo, _ int) *domain.Task {
		return po.ToDomain()
	})
}
