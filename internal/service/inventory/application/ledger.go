// internal/service/inventory/application/ledger.go
package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"ticketing/internal/pkg/logger"
	"ticketing/internal/service/inventory/domain"
	"ticketing/internal/service/inventory/domain/port"
)

// LedgerService 是票务库存账本，提供所有库存用例。
// 它本身无状态：每次调用都按 Key 读取记录，并在仓储提供的原子单元内完成检查与写入。
type LedgerService struct {
	repo        domain.ActivityRepository
	locker      port.KeyLocker
	publisher   port.EventPublisher
	broadcaster port.AvailabilityBroadcaster
	policy      domain.PurchasePolicy
	tracer      trace.Tracer
}

type Option func(*LedgerService)

// WithLocker 在每次变更外层加按 Key 的锁
func WithLocker(l port.KeyLocker) Option {
	return func(s *LedgerService) { s.locker = l }
}

// WithPublisher 设置提交后的事件发布器
func WithPublisher(p port.EventPublisher) Option {
	return func(s *LedgerService) { s.publisher = p }
}

// WithBroadcaster 设置可售状态推送
func WithBroadcaster(b port.AvailabilityBroadcaster) Option {
	return func(s *LedgerService) { s.broadcaster = b }
}

// WithPurchasePolicy 设置购票规则
func WithPurchasePolicy(p domain.PurchasePolicy) Option {
	return func(s *LedgerService) { s.policy = p }
}

// NewLedgerService 创建一个新的账本服务实例
func NewLedgerService(repo domain.ActivityRepository, tracer trace.Tracer, opts ...Option) *LedgerService {
	s := &LedgerService{repo: repo, tracer: tracer}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lookup 按 Key 读取记录，纯读操作
func (s *LedgerService) Lookup(ctx context.Context, key string) (*Result, error) {
	key = domain.NormalizeKey(key)
	return s.run(ctx, "lookup", key, func(ctx context.Context) (*Result, error) {
		a, err := s.repo.FindByKey(ctx, key)
		if errors.Is(err, domain.ErrActivityNotFound) {
			return notFound(key), nil
		}
		if err != nil {
			return nil, errors.Wrapf(err, "lookup activity %s", key)
		}
		return &Result{Success: true, Outcome: domain.OutcomeOK, Message: fmt.Sprintf("Found %s", a.Name), Activity: a}, nil
	})
}

// Create 新建活动，计数从 0 开始
func (s *LedgerService) Create(ctx context.Context, req *CreateActivityRequest) (*Result, error) {
	key := domain.NormalizeKey(req.ActivityKey)
	return s.run(ctx, "create", key, func(ctx context.Context) (*Result, error) {
		if req.Capacity <= 0 {
			return &Result{Outcome: domain.OutcomeInvalidCapacity, Message: "Capacity must be greater than 0"}, nil
		}
		a, err := domain.NewActivity(req.ActivityKey, req.DisplayName, req.UnitPrice, req.Capacity)
		if err != nil {
			return &Result{Outcome: domain.OutcomeInvalidDetails, Message: err.Error()}, nil
		}
		a.Description = req.Description
		a.Timing = req.Timing

		if err := s.repo.Create(ctx, a); err != nil {
			if errors.Is(err, domain.ErrActivityExists) {
				return &Result{
					Outcome: domain.OutcomeAlreadyExists,
					Message: fmt.Sprintf("Activity '%s' or '%s' already exists", a.Key, a.Name),
				}, nil
			}
			return nil, errors.Wrapf(err, "create activity %s", a.Key)
		}

		s.broadcast(a)
		return &Result{Success: true, Outcome: domain.OutcomeOK, Message: fmt.Sprintf("Successfully created %s", a.Name), Activity: a}, nil
	})
}

// List 按过滤条件列出记录，按 Key 升序
func (s *LedgerService) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Activity, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.list", trace.WithAttributes(attribute.String("filter", string(filter))))
	defer span.End()

	start := time.Now()
	list, err := s.repo.List(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		observeOperation("list", outcomeError, time.Since(start))
		return nil, errors.Wrapf(err, "list activities (%s)", filter)
	}
	observeOperation("list", string(domain.OutcomeOK), time.Since(start))
	return list, nil
}

// Summary 汇总所有记录
func (s *LedgerService) Summary(ctx context.Context) (*Summary, error) {
	list, err := s.List(ctx, domain.FilterAll)
	if err != nil {
		return nil, err
	}
	sum := &Summary{TotalActivities: len(list)}
	for _, a := range list {
		if a.IsAvailable() {
			sum.AvailableActivities++
		}
		if a.IsSoldOut {
			sum.SoldOutActivities++
		}
		sum.TotalTicketsSold += a.Reserved
		sum.TotalCapacity += a.Capacity
	}
	return sum, nil
}

// Reserve 预占 quantity 张票。检查与写入在同一个原子单元内完成
func (s *LedgerService) Reserve(ctx context.Context, key string, quantity int, registrant *domain.Registrant) (*Result, error) {
	key = domain.NormalizeKey(key)
	return s.run(ctx, "reserve", key, func(ctx context.Context) (*Result, error) {
		a, rej, err := s.mutate(ctx, "reserve", key, func(a *domain.Activity) error {
			if quantity > 0 && s.policy != nil {
				ok, err := s.policy.Allow(ctx, domain.PurchaseFacts{
					Quantity:    quantity,
					ActivityKey: a.Key,
					Remaining:   a.Remaining(),
					UnitPrice:   a.UnitPrice,
				})
				if err != nil {
					return errors.Wrap(err, "evaluate purchase policy")
				}
				if !ok {
					return domain.Reject(domain.OutcomePolicyRejected,
						fmt.Sprintf("Purchase of %d ticket(s) for %s is not allowed", quantity, a.Name))
				}
			}
			return a.Reserve(quantity)
		})
		if err != nil || rej != nil {
			return rejected(a, rej), err
		}

		res := &Result{
			Success:    true,
			Outcome:    domain.OutcomeOK,
			Message:    fmt.Sprintf("Successfully purchased %d ticket(s) for %s", quantity, a.Name),
			Activity:   a,
			Quantity:   quantity,
			TotalPrice: a.PriceFor(quantity),
		}
		if registrant != nil {
			r := *registrant
			if r.BookingID == "" {
				r.BookingID = newBookingID()
			}
			registrant = &r
			res.BookingID = r.BookingID
		}
		s.afterCommit(ctx, domain.EventTicketsPurchased, a, quantity, res.TotalPrice, registrant)
		return res, nil
	})
}

// Release 退还 quantity 张票，不检查活动是否开放
func (s *LedgerService) Release(ctx context.Context, key string, quantity int) (*Result, error) {
	key = domain.NormalizeKey(key)
	return s.run(ctx, "release", key, func(ctx context.Context) (*Result, error) {
		a, rej, err := s.mutate(ctx, "release", key, func(a *domain.Activity) error {
			return a.Release(quantity)
		})
		if err != nil || rej != nil {
			return rejected(a, rej), err
		}
		s.afterCommit(ctx, domain.EventTicketsRefunded, a, quantity, 0, nil)
		return &Result{
			Success:  true,
			Outcome:  domain.OutcomeOK,
			Message:  fmt.Sprintf("Successfully refunded %d ticket(s) for %s", quantity, a.Name),
			Activity: a,
			Quantity: quantity,
		}, nil
	})
}

// Reset 清零计数并重新开放
func (s *LedgerService) Reset(ctx context.Context, key string) (*Result, error) {
	key = domain.NormalizeKey(key)
	return s.run(ctx, "reset", key, func(ctx context.Context) (*Result, error) {
		a, rej, err := s.mutate(ctx, "reset", key, func(a *domain.Activity) error {
			a.Reset()
			return nil
		})
		if err != nil || rej != nil {
			return rejected(a, rej), err
		}
		s.afterCommit(ctx, domain.EventCountReset, a, 0, 0, nil)
		return &Result{
			Success:  true,
			Outcome:  domain.OutcomeOK,
			Message:  fmt.Sprintf("Successfully reset ticket count for %s", a.Name),
			Activity: a,
		}, nil
	})
}

// Resize 调整容量，允许缩到已售数量以下
func (s *LedgerService) Resize(ctx context.Context, key string, capacity int) (*Result, error) {
	key = domain.NormalizeKey(key)
	return s.run(ctx, "resize", key, func(ctx context.Context) (*Result, error) {
		a, rej, err := s.mutate(ctx, "resize", key, func(a *domain.Activity) error {
			return a.Resize(capacity)
		})
		if err != nil || rej != nil {
			return rejected(a, rej), err
		}
		s.afterCommit(ctx, domain.EventCapacityUpdated, a, 0, 0, nil)
		return &Result{
			Success:  true,
			Outcome:  domain.OutcomeOK,
			Message:  fmt.Sprintf("Successfully updated capacity for %s to %d", a.Name, capacity),
			Activity: a,
		}, nil
	})
}

// UpdateDetails 修改展示信息，不触碰计数
func (s *LedgerService) UpdateDetails(ctx context.Context, key string, req *UpdateDetailsRequest) (*Result, error) {
	key = domain.NormalizeKey(key)
	return s.run(ctx, "update_details", key, func(ctx context.Context) (*Result, error) {
		a, rej, err := s.mutate(ctx, "update_details", key, func(a *domain.Activity) error {
			return a.ApplyDetails(req.patch())
		})
		if err != nil || rej != nil {
			return rejected(a, rej), err
		}
		s.broadcast(a)
		return &Result{
			Success:  true,
			Outcome:  domain.OutcomeOK,
			Message:  fmt.Sprintf("Successfully updated details for %s", a.Name),
			Activity: a,
		}, nil
	})
}

// SetActive 手动开关预订
func (s *LedgerService) SetActive(ctx context.Context, key string, active bool) (*Result, error) {
	key = domain.NormalizeKey(key)
	return s.run(ctx, "set_active", key, func(ctx context.Context) (*Result, error) {
		a, rej, err := s.mutate(ctx, "set_active", key, func(a *domain.Activity) error {
			return a.SetActive(active)
		})
		if err != nil || rej != nil {
			return rejected(a, rej), err
		}
		s.broadcast(a)
		state := "closed"
		if active {
			state = "open"
		}
		return &Result{
			Success:  true,
			Outcome:  domain.OutcomeOK,
			Message:  fmt.Sprintf("%s is now %s for booking", a.Name, state),
			Activity: a,
		}, nil
	})
}

// run 为每个用例包一层 span、日志与指标
func (s *LedgerService) run(ctx context.Context, op, key string, body func(ctx context.Context) (*Result, error)) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "ledger."+op, trace.WithAttributes(attribute.String("activity.key", key)))
	defer span.End()

	start := time.Now()
	res, err := body(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		observeOperation(op, outcomeError, time.Since(start))
		logger.Ctx(ctx).Error().Err(err).Str("operation", op).Str("activity_key", key).Msg("ledger storage failure")
		return nil, err
	}

	span.SetAttributes(
		attribute.Bool("ledger.success", res.Success),
		attribute.String("ledger.outcome", string(res.Outcome)),
	)
	observeOperation(op, string(res.Outcome), time.Since(start))

	ev := logger.Ctx(ctx).Info()
	if !res.Success {
		ev = logger.Ctx(ctx).Warn()
	}
	ev.Str("operation", op).
		Str("activity_key", key).
		Str("outcome", string(res.Outcome)).
		Msg(res.Message)
	return res, nil
}

// mutate 在 Key 锁内调用仓储的原子变更，并把错误分为业务拒绝与存储故障
func (s *LedgerService) mutate(ctx context.Context, op, key string, fn domain.MutateFunc) (*domain.Activity, *domain.Rejection, error) {
	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx, key)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "%s: lock activity %s", op, key)
		}
		defer unlock()
	}

	a, err := s.repo.Mutate(ctx, key, fn)
	if err == nil {
		return a, nil, nil
	}
	if errors.Is(err, domain.ErrActivityNotFound) {
		return nil, notFound(key).rejection(), nil
	}
	if errors.Is(err, domain.ErrActivityExists) {
		return a, domain.Reject(domain.OutcomeAlreadyExists, "An activity with this name already exists"), nil
	}
	if rej, ok := domain.AsRejection(err); ok {
		return a, rej, nil
	}
	return nil, nil, errors.Wrapf(err, "%s activity %s", op, key)
}

func (s *LedgerService) broadcast(a *domain.Activity) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastAvailability(a)
	}
}

// afterCommit 推送可售状态并发布事件。失败只记录日志与指标，不影响已提交的结果
func (s *LedgerService) afterCommit(ctx context.Context, typ domain.TicketEventType, a *domain.Activity, quantity, totalPrice int, registrant *domain.Registrant) {
	s.broadcast(a)
	if s.publisher == nil {
		return
	}

	event := &domain.TicketEvent{
		EventID:       uuid.NewString(),
		Type:          typ,
		ActivityKey:   a.Key,
		ActivityName:  a.Name,
		Quantity:      quantity,
		ReservedCount: a.Reserved,
		Capacity:      a.Capacity,
		Remaining:     a.Remaining(),
		IsSoldOut:     a.IsSoldOut,
		TotalPrice:    totalPrice,
		Registrant:    registrant,
		OccurredAt:    time.Now().UTC(),
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		event.TraceID = sc.TraceID().String()
	}

	if err := s.publisher.PublishTicketEvent(ctx, event); err != nil {
		publishFailures.Inc()
		logger.Ctx(ctx).Error().Err(err).
			Str("event_id", event.EventID).
			Str("event_type", string(typ)).
			Str("activity_key", a.Key).
			Msg("failed to publish ticket event after commit")
		return
	}
	trace.SpanFromContext(ctx).AddEvent("ticket event published",
		trace.WithAttributes(attribute.String("event.id", event.EventID)))
}

func notFound(key string) *Result {
	return &Result{Outcome: domain.OutcomeNotFound, Message: fmt.Sprintf("Activity '%s' not found", key)}
}

func (r *Result) rejection() *domain.Rejection {
	return domain.Reject(r.Outcome, r.Message)
}

func rejected(a *domain.Activity, rej *domain.Rejection) *Result {
	if rej == nil {
		return nil
	}
	return &Result{Outcome: rej.Outcome, Message: rej.Message, Activity: a}
}

// newBookingID 生成 8 位大写预订号
func newBookingID() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(id[:8])
}
