package application

import (
	"context"

	"github.com/dmehra2102/shopease/internal/customer/domain"
	"github.com/dmehra2102/shopease/internal/platform/apperr"
	"github.com/dmehra2102/shopease/internal/platform/auth"
	"github.com/dmehra2102/shopease/internal/platform/pagination"
)

type Service struct {
	repo CustomerRepository
}

func NewService(repo CustomerRepository) *Service {
	return &Service{repo: repo}
}

// Me returns the caller's customer profile, creating it on first access.
func (s *Service) Me(ctx context.Context, p auth.Principal) (domain.Customer, error) {
	if p.UserID == "" {
		return domain.Customer{}, apperr.Unauthorized("authentication credentials were not provided")
	}
	return s.repo.GetOrCreate(ctx, p.UserID)
}

func (s *Service) UpdateMe(ctx context.Context, p auth.Principal, profile domain.Profile) (domain.Customer, error) {
	if p.UserID == "" {
		return domain.Customer{}, apperr.Unauthorized("authentication credentials were not provided")
	}
	if err := profile.Validate(); err != nil {
		return domain.Customer{}, err
	}
	return s.repo.UpdateByUser(ctx, p.UserID, profile)
}

type CustomerPage struct {
	pagination.Params
	Count   int
	Results []domain.Customer
}

func (s *Service) List(ctx context.Context, page pagination.Params) (CustomerPage, error) {
	page = page.Normalize()
	cs, count, err := s.repo.List(ctx, page)
	if err != nil {
		return CustomerPage{}, err
	}
	return CustomerPage{Params: page, Count: count, Results: cs}, nil
}

func (s *Service) Get(ctx context.Context, id int64) (domain.Customer, error) {
	return s.repo.Get(ctx, id)
}
