package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/dmehra2102/shopease/internal/platform/apperr"
	"github.com/dmehra2102/shopease/internal/platform/pagination"
)

func TestProductValidate(t *testing.T) {
	valid := Product{Title: "Coffee", UnitPrice: decimal.RequireFromString("4.50"), Inventory: 3, CollectionID: 1}
	assert.NoError(t, valid.Validate())

	tests := map[string]func(p *Product){
		"blank title":        func(p *Product) { p.Title = "  " },
		"negative price":     func(p *Product) { p.UnitPrice = decimal.RequireFromString("-0.01") },
		"negative inventory": func(p *Product) { p.Inventory = -1 },
		"missing collection": func(p *Product) { p.CollectionID = 0 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			p := valid
			mutate(&p)
			assert.True(t, apperr.HasCode(p.Validate(), apperr.CodeValidation))
		})
	}
}

func TestInventoryStatus(t *testing.T) {
	assert.Equal(t, "Low", Product{Inventory: 9}.InventoryStatus())
	assert.Equal(t, "OK", Product{Inventory: 10}.InventoryStatus())
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "dark-roast-coffee-1kg", Slugify("  Dark Roast -- Coffee (1kg)! "))
	assert.Equal(t, "", Slugify("!!!"))
}

func TestProductFilterNormalize(t *testing.T) {
	f := ProductFilter{Params: pagination.Params{Page: 0, PageSize: 500}}.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, DefaultPageSize, f.PageSize)
	assert.Equal(t, 0, f.Offset())

	f = ProductFilter{Params: pagination.Params{Page: 3, PageSize: 20}}.Normalize()
	assert.Equal(t, 40, f.Offset())
}

func TestProductFilterOrdering(t *testing.T) {
	for _, o := range ProductOrderings {
		assert.Equal(t, o, ProductFilter{Ordering: o}.Normalize().Ordering)
	}
	for _, o := range []string{"title", "unit_price; DROP TABLE products", "--unit_price"} {
		assert.Empty(t, ProductFilter{Ordering: o}.Normalize().Ordering, o)
	}
}
