package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmehra2102/shopease/internal/platform/auth"
	"github.com/dmehra2102/shopease/internal/platform/httpx"
	"github.com/dmehra2102/shopease/internal/review/application"
	"github.com/dmehra2102/shopease/internal/review/domain"
)

type Handler struct {
	log     *slog.Logger
	service *application.Service
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{log: log, service: service}
}

type reviewReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type reviewResp struct {
	ID          int64  `json:"id"`
	ProductID   int64  `json:"product_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

func toResp(r domain.Review) reviewResp {
	return reviewResp{ID: r.ID, ProductID: r.ProductID, Name: r.Name, Description: r.Description, Date: r.Date.Format("2006-01-02")}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/products/{productID}/reviews", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/{reviewID}", h.get)
		r.With(auth.RequireAuth(h.log)).Post("/", h.add)
		r.With(auth.RequireAdmin(h.log)).Delete("/{reviewID}", h.delete)
	})
}

func params(r *http.Request) (productID, reviewID int64, err error) {
	productID, err = httpx.IDParam(r, "productID")
	if err != nil {
		return 0, 0, domain.ErrProductNotFound
	}
	if chi.URLParam(r, "reviewID") == "" {
		return productID, 0, nil
	}
	reviewID, err = httpx.IDParam(r, "reviewID")
	if err != nil {
		return 0, 0, domain.ErrReviewNotFound
	}
	return productID, reviewID, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	productID, _, err := params(r)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	reviews, err := h.service.ListReviews(r.Context(), productID)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	out := make([]reviewResp, 0, len(reviews))
	for _, rv := range reviews {
		out = append(out, toResp(rv))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	productID, reviewID, err := params(r)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	rv, err := h.service.GetReview(r.Context(), productID, reviewID)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toResp(rv))
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	productID, _, err := params(r)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	var req reviewReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	rv, err := h.service.AddReview(r.Context(), productID, req.Name, req.Description)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toResp(rv))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	productID, reviewID, err := params(r)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	if err := h.service.DeleteReview(r.Context(), productID, reviewID); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
