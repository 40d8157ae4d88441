package domain

import "errors"

// Outcome 是账本操作的业务结果分类。除 OutcomeOK 外都是"预期内"的拒绝，
// 以值的形式返回给调用方，而不是当作故障处理。
type Outcome string

const (
	OutcomeOK                   Outcome = "OK"
	OutcomeNotFound             Outcome = "NOT_FOUND"
	OutcomeInactive             Outcome = "INACTIVE"
	OutcomeSoldOut              Outcome = "SOLD_OUT"
	OutcomeInsufficientCapacity Outcome = "INSUFFICIENT_CAPACITY"
	OutcomeCannotRelease        Outcome = "CANNOT_RELEASE"
	OutcomeInvalidCapacity      Outcome = "INVALID_CAPACITY"
	OutcomeInvalidQuantity      Outcome = "INVALID_QUANTITY"
	OutcomeInvalidDetails       Outcome = "INVALID_DETAILS"
	OutcomeAlreadyExists        Outcome = "ALREADY_EXISTS"
	OutcomePolicyRejected       Outcome = "POLICY_REJECTED"
)

// Rejection 是领域方法拒绝变更时返回的错误。
type Rejection struct {
	Outcome Outcome
	Message string
}

func (r *Rejection) Error() string { return r.Message }

func reject(o Outcome, msg string) error {
	return &Rejection{Outcome: o, Message: msg}
}

// Reject 供应用层构造拒绝结果 (例如购票规则)。
func Reject(o Outcome, msg string) *Rejection {
	return &Rejection{Outcome: o, Message: msg}
}

// AsRejection 判断 err 是否为业务拒绝。
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}
