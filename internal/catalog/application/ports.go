package application

import (
	"context"

	"github.com/dmehra2102/shopease/internal/catalog/domain"
)

type ProductRepository interface {
	List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int, error)
	Get(ctx context.Context, id int64) (domain.Product, error)
	Create(ctx context.Context, p domain.Product) (domain.Product, error)
	Update(ctx context.Context, p domain.Product) (domain.Product, error)
	Delete(ctx context.Context, id int64) error
	ClearInventory(ctx context.Context, ids []int64) (int64, error)
}

type CollectionRepository interface {
	List(ctx context.Context) ([]domain.Collection, error)
	Get(ctx context.Context, id int64) (domain.Collection, error)
	Create(ctx context.Context, c domain.Collection) (domain.Collection, error)
	Update(ctx context.Context, c domain.Collection) (domain.Collection, error)
	Delete(ctx context.Context, id int64) error
}
