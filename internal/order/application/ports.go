package application

import (
	"context"
	"time"

	"github.com/dmehra2102/shopease/internal/order/domain"
	"github.com/dmehra2102/shopease/internal/platform/pagination"
)

type OrderRepository interface {
	// Place converts a cart into an order atomically: the order, its item
	// snapshots, the cart deletion and the OrderPlaced outbox event all
	// commit together or not at all.
	Place(ctx context.Context, req domain.PlaceRequest) (domain.Order, error)
	// List and ListForUser return one page ordered by id plus the total count.
	List(ctx context.Context, p pagination.Params) ([]domain.Order, int, error)
	ListForUser(ctx context.Context, userID string, p pagination.Params) ([]domain.Order, int, error)
	Get(ctx context.Context, id int64) (domain.Order, error)
	GetForUser(ctx context.Context, id int64, userID string) (domain.Order, error)
	UpdatePaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus, traceparent string) (domain.Order, error)
	Delete(ctx context.Context, id int64) error
}

type Metrics interface {
	ObservePlaceOrder(start time.Time)
	IncOrderPlaced()
	IncPlacementFailed(code string)
	IncPaymentStatusChanged(status string)
}
