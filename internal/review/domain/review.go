package domain

import (
	"strings"
	"time"

	"github.com/dmehra2102/shopease/internal/platform/apperr"
)

var (
	ErrReviewNotFound  = apperr.NotFound("review not found")
	ErrProductNotFound = apperr.NotFound("product not found")
)

type Review struct {
	ID          int64
	ProductID   int64
	Name        string
	Description string
	Date        time.Time
}

func (r Review) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return apperr.Validation("name is required")
	}
	if len(r.Name) > 255 {
		return apperr.Validation("name must be at most 255 characters")
	}
	if strings.TrimSpace(r.Description) == "" {
		return apperr.Validation("description is required")
	}
	return nil
}
