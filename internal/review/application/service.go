package application

import (
	"context"

	"github.com/dmehra2102/shopease/internal/review/domain"
)

type ReviewRepository interface {
	Add(ctx context.Context, r domain.Review) (domain.Review, error)
	List(ctx context.Context, productID int64) ([]domain.Review, error)
	Get(ctx context.Context, productID, id int64) (domain.Review, error)
	Delete(ctx context.Context, productID, id int64) error
}

type Service struct {
	repo ReviewRepository
}

func NewService(repo ReviewRepository) *Service {
	return &Service{repo: repo}
}

// AddReview attaches a review to the product; the product must exist.
func (s *Service) AddReview(ctx context.Context, productID int64, name, description string) (domain.Review, error) {
	r := domain.Review{ProductID: productID, Name: name, Description: description}
	if err := r.Validate(); err != nil {
		return domain.Review{}, err
	}
	return s.repo.Add(ctx, r)
}

func (s *Service) ListReviews(ctx context.Context, productID int64) ([]domain.Review, error) {
	return s.repo.List(ctx, productID)
}

func (s *Service) GetReview(ctx context.Context, productID, id int64) (domain.Review, error) {
	return s.repo.Get(ctx, productID, id)
}

func (s *Service) DeleteReview(ctx context.Context, productID, id int64) error {
	return s.repo.Delete(ctx, productID, id)
}
