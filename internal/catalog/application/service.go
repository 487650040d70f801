package application

import (
	"context"

	"github.com/dmehra2102/shopease/internal/catalog/domain"
	"github.com/dmehra2102/shopease/internal/platform/apperr"
	"github.com/dmehra2102/shopease/internal/platform/pagination"
)

type Service struct {
	products    ProductRepository
	collections CollectionRepository
}

func NewService(products ProductRepository, collections CollectionRepository) *Service {
	return &Service{products: products, collections: collections}
}

type ProductPage struct {
	pagination.Params
	Count   int
	Results []domain.Product
}

func (s *Service) ListProducts(ctx context.Context, f domain.ProductFilter) (ProductPage, error) {
	f = f.Normalize()
	products, count, err := s.products.List(ctx, f)
	if err != nil {
		return ProductPage{}, err
	}
	return ProductPage{Params: f.Params, Count: count, Results: products}, nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	return s.products.Get(ctx, id)
}

func (s *Service) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	if p.Slug == "" {
		p.Slug = domain.Slugify(p.Title)
	}
	if err := p.Validate(); err != nil {
		return domain.Product{}, err
	}
	return s.products.Create(ctx, p)
}

func (s *Service) UpdateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	if p.Slug == "" {
		p.Slug = domain.Slugify(p.Title)
	}
	if err := p.Validate(); err != nil {
		return domain.Product{}, err
	}
	return s.products.Update(ctx, p)
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	return s.products.Delete(ctx, id)
}

// ClearInventory zeroes the stock of the given products and reports how many
// were updated.
func (s *Service) ClearInventory(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, apperr.Validation("ids must not be empty")
	}
	return s.products.ClearInventory(ctx, ids)
}

func (s *Service) ListCollections(ctx context.Context) ([]domain.Collection, error) {
	return s.collections.List(ctx)
}

func (s *Service) GetCollection(ctx context.Context, id int64) (domain.Collection, error) {
	return s.collections.Get(ctx, id)
}

func (s *Service) CreateCollection(ctx context.Context, c domain.Collection) (domain.Collection, error) {
	if err := c.Validate(); err != nil {
		return domain.Collection{}, err
	}
	return s.collections.Create(ctx, c)
}

func (s *Service) UpdateCollection(ctx context.Context, c domain.Collection) (domain.Collection, error) {
	if err := c.Validate(); err != nil {
		return domain.Collection{}, err
	}
	return s.collections.Update(ctx, c)
}

func (s *Service) DeleteCollection(ctx context.Context, id int64) error {
	return s.collections.Delete(ctx, id)
}
