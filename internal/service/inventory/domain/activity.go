// internal/service/inventory/domain/activity.go
package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Activity 是可预订活动 (运动项目 / 课程) 的票务库存记录，以 Key 唯一标识。
// IsSoldOut / IsActive 是 Reserved 与 Capacity 的派生缓存，只能通过下面的方法修改。
type Activity struct {
	ID          int64
	Key         string
	Name        string
	Description string
	Timing      string
	UnitPrice   int
	Capacity    int
	Reserved    int
	IsActive    bool
	IsSoldOut   bool
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NormalizeKey 统一活动 Key 的格式 (去空白、小写)。
func NormalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// NewActivity 创建一条全新的库存记录：计数为 0，未售罄。
func NewActivity(key, name string, unitPrice, capacity int) (*Activity, error) {
	key = NormalizeKey(key)
	name = strings.TrimSpace(name)
	switch {
	case key == "":
		return nil, fmt.Errorf("%w: activity key cannot be empty", ErrInvalidActivity)
	case name == "":
		return nil, fmt.Errorf("%w: activity name cannot be empty", ErrInvalidActivity)
	case unitPrice < 0:
		return nil, fmt.Errorf("%w: price cannot be negative", ErrInvalidActivity)
	case capacity <= 0:
		return nil, fmt.Errorf("%w: max capacity must be greater than 0", ErrInvalidActivity)
	}
	now := time.Now()
	return &Activity{
		Key:       key,
		Name:      name,
		UnitPrice: unitPrice,
		Capacity:  capacity,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Remaining 是剩余可售票数，不会小于 0。
func (a *Activity) Remaining() int {
	if r := a.Capacity - a.Reserved; r > 0 {
		return r
	}
	return 0
}

// PriceFor 返回 quantity 张票的总价，溢出时截断到 math.MaxInt。
func (a *Activity) PriceFor(quantity int) int {
	if quantity <= 0 || a.UnitPrice <= 0 {
		return 0
	}
	if quantity > math.MaxInt/a.UnitPrice {
		return math.MaxInt
	}
	return a.UnitPrice * quantity
}

// IsAvailable 表示当前是否接受新的预订。
func (a *Activity) IsAvailable() bool {
	return a.IsActive && !a.IsSoldOut
}

// Clone 返回一份独立副本，仓储在执行变更函数前使用它，避免拒绝时污染原值。
func (a *Activity) Clone() *Activity {
	c := *a
	return &c
}

// Reserve 预占 quantity 张票。拒绝时记录保持不变。
func (a *Activity) Reserve(quantity int) error {
	if quantity <= 0 {
		return reject(OutcomeInvalidQuantity, "Quantity must be greater than 0")
	}
	if !a.IsActive {
		return reject(OutcomeInactive, fmt.Sprintf("%s is currently inactive", a.Name))
	}
	if a.IsSoldOut {
		return reject(OutcomeSoldOut, fmt.Sprintf("%s is sold out", a.Name))
	}
	// 不用 Reserved+quantity 比较，避免大数溢出
	if quantity > a.Capacity-a.Reserved {
		return reject(OutcomeInsufficientCapacity,
			fmt.Sprintf("Only %d tickets remaining for %s", a.Capacity-a.Reserved, a.Name))
	}

	a.Reserved += quantity
	if a.Reserved >= a.Capacity {
		a.IsSoldOut = true
		a.IsActive = false
	}
	return nil
}

// Release 退还 quantity 张票。刻意不检查 IsActive：已关闭的活动仍然可以退票。
func (a *Activity) Release(quantity int) error {
	if quantity <= 0 {
		return reject(OutcomeInvalidQuantity, "Quantity must be greater than 0")
	}
	if a.Reserved-quantity < 0 {
		return reject(OutcomeCannotRelease,
			fmt.Sprintf("Cannot refund %d tickets. Only %d tickets sold", quantity, a.Reserved))
	}

	a.Reserved -= quantity
	if a.IsSoldOut && a.Reserved < a.Capacity {
		a.IsSoldOut = false
		a.IsActive = true
	}
	return nil
}

// Reset 清零计数并重新开放，管理员恢复用。
func (a *Activity) Reset() {
	a.Reserved = 0
	a.IsSoldOut = false
	a.IsActive = true
}

// Resize 调整容量。允许缩到已售数量以下，此时立即进入售罄状态。
func (a *Activity) Resize(capacity int) error {
	if capacity <= 0 {
		return reject(OutcomeInvalidCapacity, "Capacity must be greater than 0")
	}
	a.Capacity = capacity
	if a.Reserved >= capacity {
		a.IsSoldOut = true
		a.IsActive = false
	} else {
		a.IsSoldOut = false
		a.IsActive = true
	}
	return nil
}

// SetActive 手动开关预订。售罄的活动不能被手动打开。
func (a *Activity) SetActive(active bool) error {
	if active && a.Reserved >= a.Capacity {
		return reject(OutcomeSoldOut, fmt.Sprintf("%s is sold out", a.Name))
	}
	a.IsActive = active
	return nil
}

// DetailsPatch 描述可修改的展示字段，nil 表示不修改。
type DetailsPatch struct {
	Name        *string
	Description *string
	UnitPrice   *int
	Timing      *string
}

// ApplyDetails 修改展示信息，不触碰计数与状态位。
func (a *Activity) ApplyDetails(p DetailsPatch) error {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return reject(OutcomeInvalidDetails, "Activity name cannot be empty")
		}
		a.Name = name
	}
	if p.UnitPrice != nil {
		if *p.UnitPrice < 0 {
			return reject(OutcomeInvalidDetails, "Price cannot be negative")
		}
		a.UnitPrice = *p.UnitPrice
	}
	if p.Description != nil {
		a.Description = *p.Description
	}
	if p.Timing != nil {
		a.Timing = *p.Timing
	}
	return nil
}
