package idempotency

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type memoryClaimer struct {
	mu      sync.Mutex
	claimed map[string]bool
	err     error
}

func newMemoryClaimer() *memoryClaimer {
	return &memoryClaimer{claimed: map[string]bool{}}
}

func (m *memoryClaimer) Key(scope, token string) string { return scope + ":" + token }

func (m *memoryClaimer) Claim(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if m.claimed[key] {
		return false, nil
	}
	m.claimed[key] = true
	return true, nil
}

func (m *memoryClaimer) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.claimed, key)
	return nil
}

func TestMiddleware(t *testing.T) {
	log := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	byPath := func(r *http.Request) string { return r.URL.Path }

	run := func(h http.Handler, key string) int {
		req := httptest.NewRequest(http.MethodPost, "/orders", nil)
		if key != "" {
			req.Header.Set(Header, key)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	t.Run("duplicate key rejected", func(t *testing.T) {
		calls := 0
		h := Middleware(newMemoryClaimer(), log, byPath)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusCreated)
		}))

		assert.Equal(t, http.StatusCreated, run(h, "abc"))
		assert.Equal(t, http.StatusConflict, run(h, "abc"))
		assert.Equal(t, http.StatusCreated, run(h, "def"))
		assert.Equal(t, 2, calls)
	})

	t.Run("no key passes through", func(t *testing.T) {
		calls := 0
		h := Middleware(newMemoryClaimer(), log, byPath)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
		}))
		run(h, "")
		run(h, "")
		assert.Equal(t, 2, calls)
	})

	t.Run("failed request releases claim", func(t *testing.T) {
		status := http.StatusBadRequest
		h := Middleware(newMemoryClaimer(), log, byPath)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		assert.Equal(t, http.StatusBadRequest, run(h, "retry-me"))
		status = http.StatusCreated
		assert.Equal(t, http.StatusCreated, run(h, "retry-me"))
	})

	t.Run("store error is a server error", func(t *testing.T) {
		c := newMemoryClaimer()
		c.err = errors.New("redis down")
		h := Middleware(c, log, byPath)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		}))
		assert.Equal(t, http.StatusInternalServerError, run(h, "abc"))
	})
}
