package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmehra2102/shopease/internal/platform/apperr"
	"github.com/dmehra2102/shopease/internal/platform/pagination"
)

// LowStockThreshold separates "Low" from "OK" inventory status.
const LowStockThreshold = 10

type Product struct {
	ID           int64
	Title        string
	Slug         string
	Description  string
	UnitPrice    decimal.Decimal
	Inventory    int
	CollectionID int64
	LastUpdate   time.Time
}

func (p Product) InventoryStatus() string {
	if p.Inventory < LowStockThreshold {
		return "Low"
	}
	return "OK"
}

func (p Product) Validate() error {
	switch {
	case strings.TrimSpace(p.Title) == "":
		return apperr.Validation("title is required")
	case p.UnitPrice.IsNegative():
		return apperr.Validation("unit_price must be greater than or equal to 0")
	case p.Inventory < 0:
		return apperr.Validation("inventory must be greater than or equal to 0")
	case p.CollectionID <= 0:
		return apperr.Validation("collection_id is required")
	}
	return nil
}

// Slugify derives a URL slug from a title when none was supplied.
func Slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// ProductOrderings lists the accepted values of the ordering parameter.
var ProductOrderings = []string{"unit_price", "-unit_price", "last_update", "-last_update"}

type ProductFilter struct {
	pagination.Params
	CollectionID int64
	Search       string
	Ordering     string
}

const DefaultPageSize = pagination.DefaultPageSize

// Normalize clamps paging and drops an unrecognised ordering, which then
// falls back to ordering by id.
func (f ProductFilter) Normalize() ProductFilter {
	f.Params = f.Params.Normalize()
	if !slices.Contains(ProductOrderings, f.Ordering) {
		f.Ordering = ""
	}
	return f
}
