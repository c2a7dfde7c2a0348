package taskdetailrepo

import (
	"context"
	"time"

	"github.com/google/wire"
	domain "github.com/jobs/dcron/internal/biz/taskdetail"
	"github.com/jobs/dcron/internal/infra/persistence/commonrepo"
	"github.com/samber/lo"
	"gorm.io/gorm"
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

func (r *MysqlRepositoryImpl) Create(ctx context.Context, detail *domain.TaskDetail) error {
	po := new(TaskDetailPo).FromDomain(detail)
	if err := r.Db(ctx).Create(po).Error; err != nil {
		return err
	}
	detail.CreatedAt = po.CreatedAt
	detail.UpdatedAt = po.UpdatedAt
	return nil
}

func (r *MysqlRepositoryImpl) GetByID(ctx context.Context, id uint64) (*domain.TaskDetail, error) {
	var po TaskDetailPo
	found, err := r.First(ctx, &po, "id = ?", id)
	if err != nil || !found {
		return nil, err
	}
	return po.ToDomain(), nil
}

func (r *MysqlRepositoryImpl) UpdateWithVersion(ctx context.Context, detail *domain.TaskDetail, expectedVersion int64) (bool, error) {
	ok, err := r.CompareAndUpdate(ctx, &TaskDetailPo{}, detail.ID, expectedVersion, map[string]any{
		"status":        detail.Status,
		"end_time":      detail.EndTime,
		"error_message": detail.ErrorMessage,
	})
	if err != nil || !ok {
		return ok, err
	}
	detail.Version = expectedVersion + 1
	return true, nil
}

func (r *MysqlRepositoryImpl) List(ctx context.Context, filter *domain.ListFilter, offset, limit int) ([]*domain.TaskDetail, int64, error) {
	scoped := func() *gorm.DB {
		query := r.Db(ctx).Model(&TaskDetailPo{}).Where("task_id = ?", filter.TaskID)
		if filter.Status.IsPresent() {
			query = query.Where("status = ?", filter.Status.MustGet())
		}
		return query
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var pos []TaskDetailPo
	query := scoped().Order("start_time DESC, id DESC")
	if limit > 0 {
		query = query.Offset(offset).Limit(limit)
	}
	if err := query.Find(&pos).Error; err != nil {
		return nil, 0, err
	}
	return lo.Map(pos, func(po TaskDetailPo, _ int) *domain.TaskDetail {
		return po.ToDomain()
	}), total, nil
}

func (r *MysqlRepositoryImpl) CountAttempts(ctx context.Context, taskID uint64, fireTime time.Time) (int64, error) {
	var count int64
	err := r.Db(ctx).Model(&TaskDetailPo{}).
		Where("task_id = ? AND fire_time = ?", taskID, fireTime).
		Count(&count).Error
	return count, err
}
