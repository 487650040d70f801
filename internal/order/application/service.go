package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/shopease/internal/order/domain"
	"github.com/dmehra2102/shopease/internal/platform/apperr"
	"github.com/dmehra2102/shopease/internal/platform/auth"
	"github.com/dmehra2102/shopease/internal/platform/pagination"
	"github.com/dmehra2102/shopease/pkg/tracing"
)

type Service struct {
	repo    OrderRepository
	metrics Metrics
	tracer  trace.Tracer
}

func NewService(repo OrderRepository, metrics Metrics) *Service {
	return &Service{repo: repo, metrics: metrics, tracer: otel.Tracer("order-service")}
}

// PlaceOrder turns the cart into an order owned by the caller. The cart is
// consumed: a second placement of the same cart fails with "cart not found".
func (s *Service) PlaceOrder(ctx context.Context, cartID uuid.UUID, p auth.Principal) (domain.Order, error) {
	start := time.Now()
	defer s.metrics.ObservePlaceOrder(start)

	ctx, span := s.tracer.Start(ctx, "PlaceOrder", trace.WithAttributes(attribute.String("cart.id", cartID.String())))
	defer span.End()

	if p.UserID == "" {
		return domain.Order{}, apperr.Unauthorized("authentication credentials were not provided")
	}

	o, err := s.repo.Place(ctx, domain.PlaceRequest{
		CartID:      cartID,
		UserID:      p.UserID,
		Traceparent: tracing.Traceparent(ctx),
	})
	if err != nil {
		span.RecordError(err)
		s.metrics.IncPlacementFailed(string(apperr.CodeOf(err)))
		return domain.Order{}, err
	}
	span.SetAttributes(attribute.Int64("order.id", o.ID), attribute.Int("order.items", len(o.Items)))
	s.metrics.IncOrderPlaced()
	return o, nil
}

type OrderPage struct {
	pagination.Params
	Count   int
	Results []domain.Order
}

// ListOrders returns every order to staff and only their own to everyone else.
func (s *Service) ListOrders(ctx context.Context, p auth.Principal, page pagination.Params) (OrderPage, error) {
	page = page.Normalize()
	var (
		orders []domain.Order
		count  int
		err    error
	)
	switch {
	case p.IsStaff:
		orders, count, err = s.repo.List(ctx, page)
	case p.UserID == "":
		return OrderPage{}, apperr.Unauthorized("authentication credentials were not provided")
	default:
		orders, count, err = s.repo.ListForUser(ctx, p.UserID, page)
	}
	if err != nil {
		return OrderPage{}, err
	}
	return OrderPage{Params: page, Count: count, Results: orders}, nil
}

func (s *Service) GetOrder(ctx context.Context, id int64, p auth.Principal) (domain.Order, error) {
	if p.IsStaff {
		return s.repo.Get(ctx, id)
	}
	if p.UserID == "" {
		return domain.Order{}, apperr.Unauthorized("authentication credentials were not provided")
	}
	return s.repo.GetForUser(ctx, id, p.UserID)
}

func (s *Service) UpdatePaymentStatus(ctx context.Context, id int64, status string, p auth.Principal) (domain.Order, error) {
	if !p.IsStaff {
		return domain.Order{}, apperr.Forbidden("you do not have permission to perform this action")
	}
	st, err := domain.ParsePaymentStatus(status)
	if err != nil {
		return domain.Order{}, err
	}

	ctx, span := s.tracer.Start(ctx, "UpdatePaymentStatus", trace.WithAttributes(
		attribute.Int64("order.id", id),
		attribute.String("order.payment_status", string(st)),
	))
	defer span.End()

	o, err := s.repo.UpdatePaymentStatus(ctx, id, st, tracing.Traceparent(ctx))
	if err != nil {
		span.RecordError(err)
		return domain.Order{}, err
	}
	s.metrics.IncPaymentStatusChanged(string(st))
	return o, nil
}

func (s *Service) DeleteOrder(ctx context.Context, id int64, p auth.Principal) error {
	if !p.IsStaff {
		return apperr.Forbidden("you do not have permission to perform this action")
	}
	return s.repo.Delete(ctx, id)
}
