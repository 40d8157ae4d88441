package interfaces

import (
	"encoding/json"
	"io"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"ticketing/internal/pkg/logger"
	"ticketing/internal/service/inventory/application"
	"ticketing/internal/service/inventory/domain"
)

const maxBodyBytes = 1 << 20

// InventoryHandler 封装了 inventory 服务的 HTTP 处理器
type InventoryHandler struct {
	ledger *application.LedgerService
	tracer trace.Tracer
}

// NewInventoryHandler 创建一个新的 HTTP 处理器实例
func NewInventoryHandler(ledger *application.LedgerService, tracer trace.Tracer) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, tracer: tracer}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *InventoryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /activities", h.handleCreate)
	mux.HandleFunc("GET /activities", h.handleList)
	mux.HandleFunc("GET /activities/summary", h.handleSummary)
	mux.HandleFunc("GET /activities/{key}", h.handleLookup)
	mux.HandleFunc("PATCH /activities/{key}", h.handleUpdateDetails)
	mux.HandleFunc("POST /activities/{key}/active", h.handleSetActive)
	mux.HandleFunc("POST /activities/{key}/purchase", h.handlePurchase)
	mux.HandleFunc("POST /activities/{key}/refund", h.handleRefund)
	mux.HandleFunc("POST /activities/{key}/reset", h.handleReset)
	mux.HandleFunc("PUT /activities/{key}/capacity", h.handleResize)
}

func (h *InventoryHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req application.CreateActivityRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.respond(w, r, "http.CreateActivity", http.StatusCreated, func(r *http.Request) (*application.Result, error) {
		return h.ledger.Create(r.Context(), &req)
	})
}

func (h *InventoryHandler) handleLookup(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "http.LookupActivity", http.StatusOK, func(r *http.Request) (*application.Result, error) {
		return h.ledger.Lookup(r.Context(), r.PathValue("key"))
	})
}

func (h *InventoryHandler) handleUpdateDetails(w http.ResponseWriter, r *http.Request) {
	var req application.UpdateDetailsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.respond(w, r, "http.UpdateActivityDetails", http.StatusOK, func(r *http.Request) (*application.Result, error) {
		return h.ledger.UpdateDetails(r.Context(), r.PathValue("key"), &req)
	})
}

func (h *InventoryHandler) handleSetActive(w http.ResponseWriter, r *http.Request) {
	var req application.SetActiveRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.IsActive == nil {
		writeError(w, http.StatusBadRequest, "is_active is required")
		return
	}
	h.respond(w, r, "http.SetActivityActive", http.StatusOK, func(r *http.Request) (*application.Result, error) {
		return h.ledger.SetActive(r.Context(), r.PathValue("key"), *req.IsActive)
	})
}

func (h *InventoryHandler) handlePurchase(w http.ResponseWriter, r *http.Request) {
	var req application.PurchaseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.respond(w, r, "http.PurchaseTickets", http.StatusOK, func(r *http.Request) (*application.Result, error) {
		return h.ledger.Reserve(r.Context(), r.PathValue("key"), req.Quantity, req.Registrant)
	})
}

func (h *InventoryHandler) handleRefund(w http.ResponseWriter, r *http.Request) {
	var req application.RefundRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.respond(w, r, "http.RefundTickets", http.StatusOK, func(r *http.Request) (*application.Result, error) {
		return h.ledger.Release(r.Context(), r.PathValue("key"), req.Quantity)
	})
}

func (h *InventoryHandler) handleReset(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "http.ResetActivity", http.StatusOK, func(r *http.Request) (*application.Result, error) {
		return h.ledger.Reset(r.Context(), r.PathValue("key"))
	})
}

func (h *InventoryHandler) handleResize(w http.ResponseWriter, r *http.Request) {
	var req application.CapacityRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.respond(w, r, "http.ResizeActivity", http.StatusOK, func(r *http.Request) (*application.Result, error) {
		return h.ledger.Resize(r.Context(), r.PathValue("key"), req.Capacity)
	})
}

func (h *InventoryHandler) handleList(w http.ResponseWriter, r *http.Request) {
	r, span := h.startSpan(r, "http.ListActivities")
	defer span.End()

	filter := domain.ListFilter(r.URL.Query().Get("filter"))
	switch filter {
	case "":
		filter = domain.FilterAll
	case domain.FilterAll, domain.FilterAvailable, domain.FilterSoldOut:
	default:
		writeError(w, http.StatusBadRequest, "filter must be one of all, available, sold_out")
		return
	}

	list, err := h.ledger.List(r.Context(), filter)
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("list activities failed")
		writeError(w, http.StatusInternalServerError, "internal storage error")
		return
	}

	resp := application.ListResponse{
		Filter:     string(filter),
		Count:      len(list),
		Activities: make([]*application.ActivityView, 0, len(list)),
	}
	for _, a := range list {
		resp.Activities = append(resp.Activities, application.NewActivityView(a))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *InventoryHandler) handleSummary(w http.ResponseWriter, r *http.Request) {
	r, span := h.startSpan(r, "http.ActivitySummary")
	defer span.End()

	sum, err := h.ledger.Summary(r.Context())
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("activity summary failed")
		writeError(w, http.StatusInternalServerError, "internal storage error")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// respond 执行一次账本操作，并把三态结果映射为 HTTP 响应
func (h *InventoryHandler) respond(w http.ResponseWriter, r *http.Request, spanName string, okStatus int, call func(*http.Request) (*application.Result, error)) {
	r, span := h.startSpan(r, spanName)
	defer span.End()

	res, err := call(r)
	if err != nil {
		// 存储故障只返回通用信息，细节留在日志中
		writeError(w, http.StatusInternalServerError, "internal storage error")
		return
	}

	status := statusFor(res.Outcome)
	if res.Success {
		status = okStatus
	}
	span.SetAttributes(attribute.Int("http.status_code", status))
	writeJSON(w, status, application.NewOperationResponse(res))
}

func (h *InventoryHandler) startSpan(r *http.Request, name string) (*http.Request, trace.Span) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	ctx, span := h.tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindServer))
	if key := r.PathValue("key"); key != "" {
		span.SetAttributes(attribute.String("activity.key", key))
	}
	return r.WithContext(ctx), span
}

// statusFor 根据结果类型返回不同的 HTTP 状态码
func statusFor(o domain.Outcome) int {
	switch o {
	case domain.OutcomeOK:
		return http.StatusOK
	case domain.OutcomeNotFound:
		return http.StatusNotFound
	case domain.OutcomeAlreadyExists,
		domain.OutcomeInactive,
		domain.OutcomeSoldOut,
		domain.OutcomeInsufficientCapacity,
		domain.OutcomeCannotRelease:
		return http.StatusConflict // 请求有效，但与当前库存状态冲突
	case domain.OutcomeInvalidCapacity,
		domain.OutcomeInvalidQuantity,
		domain.OutcomeInvalidDetails:
		return http.StatusBadRequest
	case domain.OutcomePolicyRejected:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"message": msg,
	})
}
