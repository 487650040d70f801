package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/shopease/internal/catalog/application"
	"github.com/dmehra2102/shopease/internal/catalog/domain"
	"github.com/dmehra2102/shopease/internal/platform/apperr"
	"github.com/dmehra2102/shopease/internal/platform/auth"
	"github.com/dmehra2102/shopease/internal/platform/httpx"
	"github.com/dmehra2102/shopease/internal/platform/pagination"
)

type Handler struct {
	log     *slog.Logger
	service *application.Service
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("catalog-http"),
	}
}

type productReq struct {
	Title        string          `json:"title"`
	Slug         string          `json:"slug"`
	Description  string          `json:"description"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Inventory    int             `json:"inventory"`
	CollectionID int64           `json:"collection"`
}

type productResp struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Slug            string    `json:"slug"`
	Description     string    `json:"description"`
	UnitPrice       string    `json:"unit_price"`
	Inventory       int       `json:"inventory"`
	InventoryStatus string    `json:"inventory_status"`
	CollectionID    int64     `json:"collection"`
	LastUpdate      time.Time `json:"last_update"`
}

type pageResp = pagination.Page[productResp]

type collectionReq struct {
	Title             string `json:"title"`
	FeaturedProductID *int64 `json:"featured_product"`
}

type collectionResp struct {
	ID                int64  `json:"id"`
	Title             string `json:"title"`
	FeaturedProductID *int64 `json:"featured_product"`
	ProductCount      int    `json:"product_count"`
}

type clearInventoryReq struct {
	IDs []int64 `json:"ids"`
}

func toProductResp(p domain.Product) productResp {
	return productResp{
		ID:              p.ID,
		Title:           p.Title,
		Slug:            p.Slug,
		Description:     p.Description,
		UnitPrice:       p.UnitPrice.StringFixed(2),
		Inventory:       p.Inventory,
		InventoryStatus: p.InventoryStatus(),
		CollectionID:    p.CollectionID,
		LastUpdate:      p.LastUpdate,
	}
}

func toCollectionResp(c domain.Collection) collectionResp {
	return collectionResp{ID: c.ID, Title: c.Title, FeaturedProductID: c.FeaturedProductID, ProductCount: c.ProductCount}
}

func (req productReq) toDomain(id int64) domain.Product {
	return domain.Product{
		ID:           id,
		Title:        req.Title,
		Slug:         req.Slug,
		Description:  req.Description,
		UnitPrice:    req.UnitPrice,
		Inventory:    req.Inventory,
		CollectionID: req.CollectionID,
	}
}

// Register mounts the product and collection routes. Reads are public,
// writes need a staff principal.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(auth.AdminOrReadOnly(h.log))

		r.Get("/products", h.listProducts)
		r.Post("/products", h.createProduct)
		r.Post("/products/clear-inventory", h.clearInventory)
		r.Get("/products/{productID}", h.getProduct)
		r.Put("/products/{productID}", h.updateProduct)
		r.Delete("/products/{productID}", h.deleteProduct)

		r.Get("/collections", h.listCollections)
		r.Post("/collections", h.createCollection)
		r.Get("/collections/{collectionID}", h.getCollection)
		r.Put("/collections/{collectionID}", h.updateCollection)
		r.Delete("/collections/{collectionID}", h.deleteCollection)
	})
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListProducts")
	defer span.End()

	q := r.URL.Query()
	f := domain.ProductFilter{Params: pagination.FromQuery(q), Search: q.Get("search"), Ordering: q.Get("ordering")}
	var err error
	if f.CollectionID, err = queryInt(q.Get("collection_id")); err != nil {
		httpx.WriteError(w, r, h.log, apperr.Validation("collection_id must be an integer"))
		return
	}

	res, err := h.service.ListProducts(ctx, f)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	results := make([]productResp, 0, len(res.Results))
	for _, p := range res.Results {
		results = append(results, toProductResp(p))
	}
	httpx.WriteJSON(w, http.StatusOK, pagination.NewPage(res.Params, res.Count, results))
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "productID")
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	p, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toProductResp(p))
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateProduct")
	defer span.End()

	var req productReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	p, err := h.service.CreateProduct(ctx, req.toDomain(0))
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toProductResp(p))
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateProduct")
	defer span.End()

	id, err := httpx.IDParam(r, "productID")
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	var req productReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	p, err := h.service.UpdateProduct(ctx, req.toDomain(id))
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toProductResp(p))
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "productID")
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) clearInventory(w http.ResponseWriter, r *http.Request) {
	var req clearInventoryReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	n, err := h.service.ClearInventory(r.Context(), req.IDs)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]int64{"updated": n})
}

func (h *Handler) listCollections(w http.ResponseWriter, r *http.Request) {
	cs, err := h.service.ListCollections(r.Context())
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	out := make([]collectionResp, 0, len(cs))
	for _, c := range cs {
		out = append(out, toCollectionResp(c))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) getCollection(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "collectionID")
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	c, err := h.service.GetCollection(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toCollectionResp(c))
}

func (h *Handler) createCollection(w http.ResponseWriter, r *http.Request) {
	var req collectionReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	c, err := h.service.CreateCollection(r.Context(), domain.Collection{Title: req.Title, FeaturedProductID: req.FeaturedProductID})
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toCollectionResp(c))
}

func (h *Handler) updateCollection(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "collectionID")
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	var req collectionReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	c, err := h.service.UpdateCollection(r.Context(), domain.Collection{ID: id, Title: req.Title, FeaturedProductID: req.FeaturedProductID})
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toCollectionResp(c))
}

func (h *Handler) deleteCollection(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "collectionID")
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	if err := h.service.DeleteCollection(r.Context(), id); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func queryInt(v string) (int64, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.ParseInt(v, 10, 64)
}
