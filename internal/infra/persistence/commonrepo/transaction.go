package commonrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Transaction interface {
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
}

var _ Transaction = (*DefaultRepo)(nil)

type dbContextKey struct{}

type DefaultRepo struct {
	db DB
}

func NewDefaultRepo(db DB) DefaultRepo {
	return DefaultRepo{db: db}
}

func (r *DefaultRepo) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.Db(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, dbContextKey{}, tx))
	})
}

func (r *DefaultRepo) dbFromContext(ctx context.Context) DB {
	db, ok := ctx.Value(dbContextKey{}).(DB)
	if !ok {
		return r.db
	}
	return db
}

func (r *DefaultRepo) Db(ctx context.Context) DB {
	return r.dbFromContext(ctx).WithContext(ctx)
}

// CompareAndUpdate 乐观锁更新: WHERE id = ? AND version = ?, 命中时 version+1.
// 返回 false 表示版本冲突.
func (r *DefaultRepo) CompareAndUpdate(ctx context.Context, model any, id uint64, expectedVersion int64, values map[string]any) (bool, error) {
	values["version"] = gorm.Expr("version + 1")
	tx := r.Db(ctx).Model(model).Where("id = ? AND version = ?", id, expectedVersion).Updates(values)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}

// First loads one row into dest; (false, nil) when nothing matched.
func (r *DefaultRepo) First(ctx context.Context, dest any, query any, args ...any) (bool, error) {
	if err := r.Db(ctx).Where(query, args...).First(dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
