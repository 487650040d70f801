package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/shopease/internal/customer/application"
	"github.com/dmehra2102/shopease/internal/customer/domain"
	"github.com/dmehra2102/shopease/internal/platform/apperr"
	"github.com/dmehra2102/shopease/internal/platform/auth"
	"github.com/dmehra2102/shopease/internal/platform/httpx"
	"github.com/dmehra2102/shopease/internal/platform/pagination"
)

const dateLayout = "2006-01-02"

type Handler struct {
	log     *slog.Logger
	service *application.Service
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("customer-http"),
	}
}

type customerResp struct {
	ID         int64   `json:"id"`
	UserID     string  `json:"user_id"`
	Phone      string  `json:"phone"`
	BirthDate  *string `json:"birth_date"`
	Membership string  `json:"membership"`
}

func toResp(c domain.Customer) customerResp {
	out := customerResp{ID: c.ID, UserID: c.UserID, Phone: c.Phone, Membership: string(c.Membership)}
	if c.BirthDate != nil {
		s := c.BirthDate.Format(dateLayout)
		out.BirthDate = &s
	}
	return out
}

type updateMeReq struct {
	Phone      string  `json:"phone"`
	BirthDate  *string `json:"birth_date"`
	Membership string  `json:"membership"`
}

func (req updateMeReq) profile() (domain.Profile, error) {
	p := domain.Profile{Phone: req.Phone, Membership: domain.Membership(req.Membership)}
	if p.Membership == "" {
		p.Membership = domain.MembershipBronze
	}
	if req.BirthDate != nil && *req.BirthDate != "" {
		d, err := time.Parse(dateLayout, *req.BirthDate)
		if err != nil {
			return domain.Profile{}, apperr.Validation("birth_date must be formatted as YYYY-MM-DD")
		}
		p.BirthDate = &d
	}
	return p, nil
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/customers", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(h.log))
			r.Get("/me", h.me)
			r.Put("/me", h.updateMe)
		})
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin(h.log))
			r.Get("/", h.list)
			r.Get("/{customerID}", h.get)
		})
	})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	c, err := h.service.Me(r.Context(), p)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toResp(c))
}

func (h *Handler) updateMe(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateCustomerProfile")
	defer span.End()

	var req updateMeReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	profile, err := req.profile()
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	p, _ := auth.FromContext(ctx)
	c, err := h.service.UpdateMe(ctx, p, profile)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toResp(c))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.List(r.Context(), pagination.FromQuery(r.URL.Query()))
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	out := make([]customerResp, 0, len(page.Results))
	for _, c := range page.Results {
		out = append(out, toResp(c))
	}
	httpx.WriteJSON(w, http.StatusOK, pagination.NewPage(page.Params, page.Count, out))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "customerID")
	if err != nil {
		httpx.WriteError(w, r, h.log, domain.ErrCustomerNotFound)
		return
	}
	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toResp(c))
}
