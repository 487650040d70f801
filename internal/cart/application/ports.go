package application

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmehra2102/shopease/internal/cart/domain"
)

type CartRepository interface {
	Create(ctx context.Context, c domain.Cart) error
	Get(ctx context.Context, id uuid.UUID) (domain.Cart, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// AddItem merges quantity into the (cart, product) line, creating it when
	// absent. Concurrent calls for the same pair must not lose updates.
	AddItem(ctx context.Context, cartID uuid.UUID, productID int64, quantity int) (domain.UpsertResult, error)
	UpdateItemQuantity(ctx context.Context, cartID uuid.UUID, itemID int64, quantity int) (domain.Item, error)
	RemoveItem(ctx context.Context, cartID uuid.UUID, itemID int64) error
	GetItem(ctx context.Context, cartID uuid.UUID, itemID int64) (domain.Item, error)
	ListItems(ctx context.Context, cartID uuid.UUID) ([]domain.Item, error)
}

type Metrics interface {
	IncCartItemUpserted(created bool)
}
