package domain

import (
	"strings"

	"github.com/dmehra2102/shopease/internal/platform/apperr"
)

type Collection struct {
	ID                int64
	Title             string
	FeaturedProductID *int64
	ProductCount      int
}

func (c Collection) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return apperr.Validation("title is required")
	}
	return nil
}
