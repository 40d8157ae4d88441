package infrastructure

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ticketing/internal/service/inventory/domain"
)

const mysqlDuplicateEntry = 1062

// ErrConcurrentModification 表示写回时版本号已变化。
// MySQL 的 FOR UPDATE 行锁下不会出现；不支持行锁的方言 (sqlite) 靠版本号拦住并发写。
var ErrConcurrentModification = stderrors.New("activity changed concurrently")

// GormActivityRepository 是 ActivityRepository 的 GORM 实现。
// Mutate 在事务内以 SELECT ... FOR UPDATE 锁住目标行，检查与写入在同一事务中完成。
type GormActivityRepository struct {
	db *gorm.DB
}

// NewGormActivityRepository 创建一个新的 GORM 仓储实例
func NewGormActivityRepository(db *gorm.DB) *GormActivityRepository {
	return &GormActivityRepository{db: db}
}

func (r *GormActivityRepository) Create(ctx context.Context, a *domain.Activity) error {
	model := FromDomainActivity(a)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isDuplicateKey(err) {
			return domain.ErrActivityExists
		}
		return errors.Wrap(err, "insert activity")
	}
	a.ID = int64(model.ID)
	return nil
}

func (r *GormActivityRepository) FindByKey(ctx context.Context, key string) (*domain.Activity, error) {
	var model ActivityModel
	err := r.db.WithContext(ctx).Where("activity_key = ?", key).First(&model).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrActivityNotFound
		}
		return nil, errors.Wrap(err, "select activity")
	}
	return ToDomainActivity(&model), nil
}

func (r *GormActivityRepository) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Activity, error) {
	q := r.db.WithContext(ctx).Model(&ActivityModel{})
	switch filter {
	case domain.FilterAvailable:
		q = q.Where("is_active = ? AND is_sold_out = ?", true, false)
	case domain.FilterSoldOut:
		q = q.Where("is_sold_out = ?", true)
	}

	var models []ActivityModel
	if err := q.Order("activity_key").Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "list activities")
	}
	out := make([]*domain.Activity, 0, len(models))
	for i := range models {
		out = append(out, ToDomainActivity(&models[i]))
	}
	return out, nil
}

func (r *GormActivityRepository) Mutate(ctx context.Context, key string, fn domain.MutateFunc) (*domain.Activity, error) {
	var result *domain.Activity
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model ActivityModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("activity_key = ?", key).
			First(&model).Error
		if err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrActivityNotFound
			}
			return errors.Wrap(err, "lock activity row")
		}

		current := ToDomainActivity(&model)
		next := current.Clone()
		if err := fn(next); err != nil {
			result = current
			return err
		}
		next.Version = current.Version + 1
		next.UpdatedAt = time.Now()

		res := tx.Model(&ActivityModel{}).
			Where("id = ? AND version = ?", model.ID, model.Version).
			Updates(mutableColumns(next))
		if res.Error != nil {
			if isDuplicateKey(res.Error) {
				result = current
				return domain.ErrActivityExists
			}
			return errors.Wrap(res.Error, "update activity")
		}
		if res.RowsAffected != 1 {
			result = current
			return errors.Wrapf(ErrConcurrentModification, "activity %s", key)
		}
		result = next
		return nil
	})
	if err != nil {
		return result, err
	}
	return result, nil
}

// isDuplicateKey 识别唯一索引冲突：gorm 翻译后的错误、MySQL 1062，以及未翻译的 sqlite 错误
func isDuplicateKey(err error) bool {
	if stderrors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var me *mysqldriver.MySQLError
	if stderrors.As(err, &me) && me.Number == mysqlDuplicateEntry {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
