// Package pagination implements page-number pagination for list endpoints.
package pagination

import (
	"net/url"
	"strconv"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type Params struct {
	Page     int
	PageSize int
}

// Normalize clamps out-of-range values to the first page and the default size.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 || p.PageSize > MaxPageSize {
		p.PageSize = DefaultPageSize
	}
	return p
}

func (p Params) Offset() int { return (p.Page - 1) * p.PageSize }

// FromQuery reads page and page_size. Malformed values fall back to the
// defaults rather than failing the request.
func FromQuery(q url.Values) Params {
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("page_size"))
	return Params{Page: page, PageSize: size}.Normalize()
}

// Page is the response envelope shared by paginated list endpoints.
type Page[T any] struct {
	Count    int `json:"count"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Results  []T `json:"results"`
}

func NewPage[T any](p Params, count int, results []T) Page[T] {
	if results == nil {
		results = []T{}
	}
	return Page[T]{Count: count, Page: p.Page, PageSize: p.PageSize, Results: results}
}
