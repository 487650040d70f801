package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/shopease/internal/cart/application"
	"github.com/dmehra2102/shopease/internal/cart/domain"
	"github.com/dmehra2102/shopease/internal/platform/httpx"
)

type Handler struct {
	log     *slog.Logger
	service *application.Service
	tracer  trace.Tracer
	guard   func(http.Handler) http.Handler
}

type Option func(*Handler)

// WithWriteGuard wraps the non-idempotent item add route, e.g. with the
// Idempotency-Key middleware.
func WithWriteGuard(mw func(http.Handler) http.Handler) Option {
	return func(h *Handler) { h.guard = mw }
}

func NewHandler(log *slog.Logger, service *application.Service, opts ...Option) *Handler {
	h := &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("cart-http"),
		guard:   func(next http.Handler) http.Handler { return next },
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type productResp struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	UnitPrice string `json:"unit_price"`
}

type itemResp struct {
	ID         int64       `json:"id"`
	Product    productResp `json:"product"`
	Quantity   int         `json:"quantity"`
	TotalPrice string      `json:"total_price"`
}

type cartResp struct {
	ID         uuid.UUID  `json:"id"`
	CreatedAt  time.Time  `json:"created_at"`
	Items      []itemResp `json:"items"`
	TotalPrice string     `json:"total_price"`
}

func toItemResp(it domain.Item) itemResp {
	return itemResp{
		ID: it.ID,
		Product: productResp{
			ID:        it.Product.ID,
			Title:     it.Product.Title,
			UnitPrice: it.Product.UnitPrice.StringFixed(2),
		},
		Quantity:   it.Quantity,
		TotalPrice: it.TotalPrice().StringFixed(2),
	}
}

func toCartResp(c domain.Cart) cartResp {
	out := cartResp{ID: c.ID, CreatedAt: c.CreatedAt, Items: make([]itemResp, 0, len(c.Items)), TotalPrice: c.TotalPrice().StringFixed(2)}
	for _, it := range c.Items {
		out.Items = append(out.Items, toItemResp(it))
	}
	return out
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/carts", h.createCart)
	r.Route("/carts/{cartID}", func(r chi.Router) {
		r.Get("/", h.getCart)
		r.Delete("/", h.deleteCart)

		r.Get("/items", h.listItems)
		r.With(h.guard).Post("/items", h.addItem)
		r.Get("/items/{itemID}", h.getItem)
		r.Patch("/items/{itemID}", h.updateItem)
		r.Delete("/items/{itemID}", h.removeItem)
	})
}

func cartIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "cartID"))
	if err != nil {
		return uuid.Nil, domain.ErrCartNotFound
	}
	return id, nil
}

func itemParams(r *http.Request) (uuid.UUID, int64, error) {
	cartID, err := cartIDParam(r)
	if err != nil {
		return uuid.Nil, 0, err
	}
	itemID, err := httpx.IDParam(r, "itemID")
	if err != nil {
		return uuid.Nil, 0, domain.ErrItemNotFound
	}
	return cartID, itemID, nil
}

func (h *Handler) createCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.CreateCart(r.Context())
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toCartResp(c))
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	id, err := cartIDParam(r)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	c, err := h.service.GetCart(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toCartResp(c))
}

func (h *Handler) deleteCart(w http.ResponseWriter, r *http.Request) {
	id, err := cartIDParam(r)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	if err := h.service.DeleteCart(r.Context(), id); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	id, err := cartIDParam(r)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	items, err := h.service.ListItems(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	out := make([]itemResp, 0, len(items))
	for _, it := range items {
		out = append(out, toItemResp(it))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	cartID, itemID, err := itemParams(r)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	it, err := h.service.GetItem(r.Context(), cartID, itemID)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toItemResp(it))
}

// addItem answers 201 when a new line was created and 200 when the quantity
// was merged into an existing one.
func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "AddCartItem")
	defer span.End()

	cartID, err := cartIDParam(r)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	in, err := decodeItemInput(opAdd, r)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	res, err := h.service.AddItem(ctx, cartID, in.ProductID, in.Quantity)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	httpx.WriteJSON(w, status, toItemResp(res.Item))
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	cartID, itemID, err := itemParams(r)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	in, err := decodeItemInput(opUpdate, r)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	it, err := h.service.UpdateItemQuantity(r.Context(), cartID, itemID, in.Quantity)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toItemResp(it))
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	cartID, itemID, err := itemParams(r)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	if err := h.service.RemoveItem(r.Context(), cartID, itemID); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
