package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/shopease/internal/catalog/application"
	"github.com/dmehra2102/shopease/internal/catalog/domain"
	"github.com/dmehra2102/shopease/internal/platform/apperr"
	"github.com/dmehra2102/shopease/internal/platform/auth"
)

type memCatalog struct {
	mu          sync.Mutex
	nextID      int64
	products    map[int64]domain.Product
	collections map[int64]domain.Collection
	referenced  map[int64]bool
}

func newMemCatalog() *memCatalog {
	return &memCatalog{products: map[int64]domain.Product{}, collections: map[int64]domain.Collection{}, referenced: map[int64]bool{}}
}

type memProducts struct{ *memCatalog }
type memCollections struct{ *memCatalog }

func (m memProducts) List(_ context.Context, f domain.ProductFilter) ([]domain.Product, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []domain.Product
	for _, p := range m.products {
		if f.CollectionID != 0 && p.CollectionID != f.CollectionID {
			continue
		}
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		switch f.Ordering {
		case "unit_price", "-unit_price":
			if !a.UnitPrice.Equal(b.UnitPrice) {
				return a.UnitPrice.LessThan(b.UnitPrice) == (f.Ordering == "unit_price")
			}
		case "last_update", "-last_update":
			if !a.LastUpdate.Equal(b.LastUpdate) {
				return a.LastUpdate.Before(b.LastUpdate) == (f.Ordering == "last_update")
			}
		}
		return a.ID < b.ID
	})
	total := len(all)
	lo := min(f.Offset(), total)
	hi := min(lo+f.PageSize, total)
	return all[lo:hi], total, nil
}

func (m memProducts) Get(_ context.Context, id int64) (domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return domain.Product{}, apperr.NotFound("product not found")
	}
	return p, nil
}

func (m memProducts) Create(_ context.Context, p domain.Product) (domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collections[p.CollectionID]; !ok {
		return domain.Product{}, apperr.Validation("no such collection")
	}
	m.nextID++
	p.ID = m.nextID
	p.LastUpdate = time.Now()
	m.products[p.ID] = p
	return p, nil
}

func (m memProducts) Update(_ context.Context, p domain.Product) (domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.ID]; !ok {
		return domain.Product{}, apperr.NotFound("product not found")
	}
	m.products[p.ID] = p
	return p, nil
}

func (m memProducts) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.referenced[id] {
		return apperr.Conflict("product cannot be deleted because it is associated with an order item")
	}
	if _, ok := m.products[id]; !ok {
		return apperr.NotFound("product not found")
	}
	delete(m.products, id)
	return nil
}

func (m memProducts) ClearInventory(_ context.Context, ids []int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			p.Inventory = 0
			m.products[id] = p
			n++
		}
	}
	return n, nil
}

func (m memCollections) List(context.Context) ([]domain.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Collection
	for _, c := range m.collections {
		out = append(out, m.withCount(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m memCollections) withCount(c domain.Collection) domain.Collection {
	c.ProductCount = 0
	for _, p := range m.products {
		if p.CollectionID == c.ID {
			c.ProductCount++
		}
	}
	return c
}

func (m memCollections) Get(_ context.Context, id int64) (domain.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.collections[id]
	if !ok {
		return domain.Collection{}, apperr.NotFound("collection not found")
	}
	return m.withCount(c), nil
}

func (m memCollections) Create(_ context.Context, c domain.Collection) (domain.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	c.ID = m.nextID
	m.collections[c.ID] = c
	return c, nil
}

func (m memCollections) Update(_ context.Context, c domain.Collection) (domain.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collections[c.ID]; !ok {
		return domain.Collection{}, apperr.NotFound("collection not found")
	}
	m.collections[c.ID] = c
	return m.withCount(c), nil
}

func (m memCollections) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.withCount(m.collections[id]).ProductCount > 0 {
		return apperr.Conflict("collection cannot be deleted because it includes one or more products")
	}
	delete(m.collections, id)
	return nil
}

type testEnv struct {
	router http.Handler
	store  *memCatalog
	staff  string
	user   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	tokens := auth.NewTokenService("secret", "shopease")
	staff, err := tokens.Issue(auth.Principal{UserID: "1", IsStaff: true}, time.Hour)
	require.NoError(t, err)
	user, err := tokens.Issue(auth.Principal{UserID: "2"}, time.Hour)
	require.NoError(t, err)

	store := newMemCatalog()
	svc := application.NewService(memProducts{store}, memCollections{store})
	r := chi.NewRouter()
	r.Use(auth.Authenticate(tokens, log))
	NewHandler(log, svc).Register(r)
	return &testEnv{router: r, store: store, staff: staff, user: user}
}

func (e *testEnv) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestProductLifecycle(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/collections", env.staff, `{"title":"Beverages"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var col collectionResp
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&col))

	rec = env.do(http.MethodPost, "/products", env.user, `{"title":"Tea","unit_price":"2.50","inventory":5,"collection":1}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(http.MethodPost, "/products", env.staff, `{"title":"Green Tea","unit_price":"2.5","inventory":5,"collection":`+jsonInt(col.ID)+`}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var p productResp
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&p))
	assert.Equal(t, "2.50", p.UnitPrice)
	assert.Equal(t, "green-tea", p.Slug)
	assert.Equal(t, "Low", p.InventoryStatus)

	rec = env.do(http.MethodGet, "/products?collection_id="+jsonInt(col.ID), "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page pageResp
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&page))
	assert.Equal(t, 1, page.Count)
	assert.Equal(t, domain.DefaultPageSize, page.PageSize)

	rec = env.do(http.MethodGet, "/collections/"+jsonInt(col.ID), "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&col))
	assert.Equal(t, 1, col.ProductCount)

	rec = env.do(http.MethodDelete, "/collections/"+jsonInt(col.ID), env.staff, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	env.store.referenced[p.ID] = true
	rec = env.do(http.MethodDelete, "/products/"+jsonInt(p.ID), env.staff, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	env.store.referenced[p.ID] = false
	rec = env.do(http.MethodDelete, "/products/"+jsonInt(p.ID), env.staff, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(http.MethodGet, "/products/"+jsonInt(p.ID), "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListProductsOrderingAndPaging(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodPost, "/collections", env.staff, `{"title":"Beverages"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var col collectionResp
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&col))
	for _, price := range []string{"5.00", "1.00", "3.00"} {
		rec = env.do(http.MethodPost, "/products", env.staff,
			`{"title":"Tea `+price+`","unit_price":"`+price+`","inventory":20,"collection":`+jsonInt(col.ID)+`}`)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	list := func(path string) pageResp {
		t.Helper()
		rec := env.do(http.MethodGet, path, "", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var page pageResp
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&page))
		return page
	}
	unitPrices := func(page pageResp) []string {
		out := make([]string, 0, len(page.Results))
		for _, p := range page.Results {
			out = append(out, p.UnitPrice)
		}
		return out
	}

	assert.Equal(t, []string{"1.00", "3.00", "5.00"}, unitPrices(list("/products?ordering=unit_price")))
	assert.Equal(t, []string{"5.00", "3.00", "1.00"}, unitPrices(list("/products?ordering=-unit_price")))
	assert.Equal(t, []string{"5.00", "1.00", "3.00"}, unitPrices(list("/products?ordering=title")))

	page := list("/products?ordering=unit_price&page=2&page_size=2")
	assert.Equal(t, 3, page.Count)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 2, page.PageSize)
	assert.Equal(t, []string{"5.00"}, unitPrices(page))

	page = list("/products?page=9")
	assert.Equal(t, 3, page.Count)
	assert.NotNil(t, page.Results)
	assert.Empty(t, page.Results)
}

func TestCreateProductValidation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/products", env.staff, `{"title":"Tea","unit_price":"-1","inventory":5,"collection":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPost, "/products", env.staff, `{"title":"Tea","unit_price":"1","inventory":5,"collection":99}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClearInventory(t *testing.T) {
	env := newTestEnv(t)
	env.do(http.MethodPost, "/collections", env.staff, `{"title":"Snacks"}`)
	rec := env.do(http.MethodPost, "/products", env.staff, `{"title":"Chips","unit_price":"1.99","inventory":40,"collection":1}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(http.MethodPost, "/products/clear-inventory", env.staff, `{"ids":[2]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"updated":1}`, rec.Body.String())
	assert.Zero(t, env.store.products[2].Inventory)

	rec = env.do(http.MethodPost, "/products/clear-inventory", env.staff, `{"ids":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
