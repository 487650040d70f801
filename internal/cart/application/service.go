package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/shopease/internal/cart/domain"
)

type Service struct {
	repo    CartRepository
	metrics Metrics
	now     func() time.Time
	tracer  trace.Tracer
}

func NewService(repo CartRepository, metrics Metrics) *Service {
	return &Service{repo: repo, metrics: metrics, now: time.Now, tracer: otel.Tracer("cart-service")}
}

func (s *Service) CreateCart(ctx context.Context) (domain.Cart, error) {
	c := domain.New(s.now())
	if err := s.repo.Create(ctx, c); err != nil {
		return domain.Cart{}, err
	}
	return c, nil
}

func (s *Service) GetCart(ctx context.Context, id uuid.UUID) (domain.Cart, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) DeleteCart(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// AddItem adds quantity of a product to the cart. Adding a product that is
// already in the cart increases that line's quantity; it never duplicates it.
// No stock is reserved.
func (s *Service) AddItem(ctx context.Context, cartID uuid.UUID, productID int64, quantity int) (domain.UpsertResult, error) {
	ctx, span := s.tracer.Start(ctx, "AddCartItem", trace.WithAttributes(
		attribute.String("cart.id", cartID.String()),
		attribute.Int64("product.id", productID),
		attribute.Int("quantity", quantity),
	))
	defer span.End()

	if err := domain.ValidateQuantity(quantity); err != nil {
		return domain.UpsertResult{}, err
	}
	if productID <= 0 {
		return domain.UpsertResult{}, domain.ErrNoSuchProduct
	}

	res, err := s.repo.AddItem(ctx, cartID, productID, quantity)
	if err != nil {
		span.RecordError(err)
		return domain.UpsertResult{}, err
	}
	span.SetAttributes(attribute.Bool("cart_item.created", res.Created))
	s.metrics.IncCartItemUpserted(res.Created)
	return res, nil
}

// UpdateItemQuantity replaces the line quantity outright.
func (s *Service) UpdateItemQuantity(ctx context.Context, cartID uuid.UUID, itemID int64, quantity int) (domain.Item, error) {
	if err := domain.ValidateQuantity(quantity); err != nil {
		return domain.Item{}, err
	}
	return s.repo.UpdateItemQuantity(ctx, cartID, itemID, quantity)
}

func (s *Service) RemoveItem(ctx context.Context, cartID uuid.UUID, itemID int64) error {
	return s.repo.RemoveItem(ctx, cartID, itemID)
}

func (s *Service) GetItem(ctx context.Context, cartID uuid.UUID, itemID int64) (domain.Item, error) {
	return s.repo.GetItem(ctx, cartID, itemID)
}

func (s *Service) ListItems(ctx context.Context, cartID uuid.UUID) ([]domain.Item, error) {
	return s.repo.ListItems(ctx, cartID)
}
