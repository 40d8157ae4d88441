// internal/service/inventory/infrastructure/rule/cel_policy.go
package rule

import (
	"context"
	"reflect"

	"github.com/google/cel-go/cel"
	"github.com/pkg/errors"

	"ticketing/internal/service/inventory/domain"
)

// DefaultPurchaseRule 是单次购票数量上限
const DefaultPurchaseRule = "quantity >= 1 && quantity <= 10"

// CELPurchasePolicy 是 domain.PurchasePolicy 的 CEL 实现。
// 表达式在启动时编译一次，Program 可以并发求值。
type CELPurchasePolicy struct {
	expr    string
	program cel.Program
}

// NewCELPurchasePolicy 编译规则表达式，表达式必须返回 bool
func NewCELPurchasePolicy(expr string) (*CELPurchasePolicy, error) {
	if expr == "" {
		expr = DefaultPurchaseRule
	}
	env, err := cel.NewEnv(
		cel.Variable("quantity", cel.IntType),
		cel.Variable("activity_key", cel.StringType),
		cel.Variable("remaining", cel.IntType),
		cel.Variable("unit_price", cel.IntType),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create cel env")
	}

	ast, iss := env.Compile(expr)
	if iss.Err() != nil {
		return nil, errors.Wrapf(iss.Err(), "compile purchase rule %q", expr)
	}
	if !reflect.DeepEqual(ast.OutputType(), cel.BoolType) {
		return nil, errors.Errorf("purchase rule %q must evaluate to bool, got %v", expr, ast.OutputType())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, errors.Wrap(err, "build cel program")
	}
	return &CELPurchasePolicy{expr: expr, program: prg}, nil
}

func (p *CELPurchasePolicy) Expression() string { return p.expr }

// Allow 实现了 domain.PurchasePolicy 接口
func (p *CELPurchasePolicy) Allow(ctx context.Context, f domain.PurchaseFacts) (bool, error) {
	out, _, err := p.program.ContextEval(ctx, map[string]interface{}{
		"quantity":     int64(f.Quantity),
		"activity_key": f.ActivityKey,
		"remaining":    int64(f.Remaining),
		"unit_price":   int64(f.UnitPrice),
	})
	if err != nil {
		return false, errors.Wrapf(err, "evaluate purchase rule %q", p.expr)
	}
	allowed, ok := out.Value().(bool)
	if !ok {
		return false, errors.Errorf("purchase rule %q returned %T", p.expr, out.Value())
	}
	return allowed, nil
}
