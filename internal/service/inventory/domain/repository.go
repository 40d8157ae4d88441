// internal/service/inventory/domain/repository.go
package domain

import "context"

// ListFilter 选择 List 返回的记录子集。
type ListFilter string

const (
	FilterAll       ListFilter = "all"
	FilterAvailable ListFilter = "available"
	FilterSoldOut   ListFilter = "sold_out"
)

// Matches 判断记录是否落在过滤条件内。
func (f ListFilter) Matches(a *Activity) bool {
	switch f {
	case FilterAvailable:
		return a.IsAvailable()
	case FilterSoldOut:
		return a.IsSoldOut
	default:
		return true
	}
}

// MutateFunc 在一份记录副本上执行变更；返回非 nil 错误表示放弃本次写入。
type MutateFunc func(a *Activity) error

// ActivityRepository 定义了库存记录的持久化接口。
// 它位于领域层，但由基础设施层实现。
type ActivityRepository interface {
	// Create 插入新记录；Key 或 Name 冲突时返回 ErrActivityExists。
	Create(ctx context.Context, a *Activity) error

	// FindByKey 按 Key 读取；不存在时返回 ErrActivityNotFound。
	FindByKey(ctx context.Context, key string) (*Activity, error)

	// List 按 Key 升序返回满足过滤条件的记录。
	List(ctx context.Context, filter ListFilter) ([]*Activity, error)

	// Mutate 以单条记录为单位原子地执行 "读取-检查-写入"。
	// fn 返回错误时不写入，并把未修改的记录与该错误一起返回；
	// 记录不存在时返回 ErrActivityNotFound。
	Mutate(ctx context.Context, key string, fn MutateFunc) (*Activity, error)
}
