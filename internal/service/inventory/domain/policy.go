package domain

import "context"

// PurchaseFacts 是购票规则可见的事实。
type PurchaseFacts struct {
	Quantity    int
	ActivityKey string
	Remaining   int
	UnitPrice   int
}

// PurchasePolicy 决定一次购票请求是否被允许，由基础设施层的规则引擎实现。
type PurchasePolicy interface {
	Allow(ctx context.Context, facts PurchaseFacts) (bool, error)
}
