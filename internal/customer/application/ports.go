package application

import (
	"context"

	"github.com/dmehra2102/shopease/internal/customer/domain"
	"github.com/dmehra2102/shopease/internal/platform/pagination"
)

type CustomerRepository interface {
	GetOrCreate(ctx context.Context, userID string) (domain.Customer, error)
	UpdateByUser(ctx context.Context, userID string, p domain.Profile) (domain.Customer, error)
	List(ctx context.Context, p pagination.Params) ([]domain.Customer, int, error)
	Get(ctx context.Context, id int64) (domain.Customer, error)
}
