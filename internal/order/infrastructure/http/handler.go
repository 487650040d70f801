package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/shopease/internal/order/application"
	"github.com/dmehra2102/shopease/internal/order/domain"
	"github.com/dmehra2102/shopease/internal/platform/apperr"
	"github.com/dmehra2102/shopease/internal/platform/auth"
	"github.com/dmehra2102/shopease/internal/platform/httpx"
	"github.com/dmehra2102/shopease/internal/platform/pagination"
)

type Handler struct {
	log     *slog.Logger
	service *application.Service
	tracer  trace.Tracer
	guard   func(http.Handler) http.Handler
}

type Option func(*Handler)

// WithPlaceGuard wraps order placement, e.g. with the Idempotency-Key middleware.
func WithPlaceGuard(mw func(http.Handler) http.Handler) Option {
	return func(h *Handler) { h.guard = mw }
}

func NewHandler(log *slog.Logger, service *application.Service, opts ...Option) *Handler {
	h := &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("order-http"),
		guard:   func(next http.Handler) http.Handler { return next },
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type placeOrderReq struct {
	CartID string `json:"cart_id"`
}

type updateOrderReq struct {
	PaymentStatus string `json:"payment_status"`
}

type productResp struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	UnitPrice string `json:"unit_price"`
}

type itemResp struct {
	ID        int64       `json:"id"`
	Product   productResp `json:"product"`
	UnitPrice string      `json:"unit_price"`
	Quantity  int         `json:"quantity"`
}

type orderResp struct {
	ID            int64      `json:"id"`
	CustomerID    int64      `json:"customer_id"`
	PlacedAt      time.Time  `json:"placed_at"`
	PaymentStatus string     `json:"payment_status"`
	Items         []itemResp `json:"items"`
	TotalPrice    string     `json:"total_price"`
}

func toResp(o domain.Order) orderResp {
	out := orderResp{
		ID:            o.ID,
		CustomerID:    o.CustomerID,
		PlacedAt:      o.PlacedAt,
		PaymentStatus: string(o.PaymentStatus),
		Items:         make([]itemResp, 0, len(o.Items)),
		TotalPrice:    o.TotalPrice().StringFixed(2),
	}
	for _, it := range o.Items {
		price := it.UnitPrice.StringFixed(2)
		out.Items = append(out.Items, itemResp{
			ID:        it.ID,
			Product:   productResp{ID: it.ProductID, Title: it.Title, UnitPrice: price},
			UnitPrice: price,
			Quantity:  it.Quantity,
		})
	}
	return out
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Use(auth.RequireAuth(h.log))
		r.Get("/", h.listOrders)
		r.With(h.guard).Post("/", h.placeOrder)
		r.Get("/{orderID}", h.getOrder)
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin(h.log))
			r.Patch("/{orderID}", h.updateOrder)
			r.Delete("/{orderID}", h.deleteOrder)
		})
	})
}

func orderID(r *http.Request) (int64, error) {
	id, err := httpx.IDParam(r, "orderID")
	if err != nil {
		return 0, domain.ErrOrderNotFound
	}
	return id, nil
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PlaceOrderRequest")
	defer span.End()

	var req placeOrderReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	if req.CartID == "" {
		httpx.WriteError(w, r, h.log, apperr.Validation("cart_id is required"))
		return
	}
	cartID, err := uuid.Parse(req.CartID)
	if err != nil {
		httpx.WriteError(w, r, h.log, apperr.Validation("cart_id must be a valid UUID"))
		return
	}

	p, _ := auth.FromContext(ctx)
	o, err := h.service.PlaceOrder(ctx, cartID, p)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toResp(o))
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	page, err := h.service.ListOrders(r.Context(), p, pagination.FromQuery(r.URL.Query()))
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	out := make([]orderResp, 0, len(page.Results))
	for _, o := range page.Results {
		out = append(out, toResp(o))
	}
	httpx.WriteJSON(w, http.StatusOK, pagination.NewPage(page.Params, page.Count, out))
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	p, _ := auth.FromContext(r.Context())
	o, err := h.service.GetOrder(r.Context(), id, p)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toResp(o))
}

func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateOrderRequest")
	defer span.End()

	id, err := orderID(r)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	var req updateOrderReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	p, _ := auth.FromContext(ctx)
	o, err := h.service.UpdatePaymentStatus(ctx, id, req.PaymentStatus, p)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toResp(o))
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	p, _ := auth.FromContext(r.Context())
	if err := h.service.DeleteOrder(r.Context(), id, p); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
