package idempotency

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmehra2102/shopease/internal/platform/apperr"
	"github.com/dmehra2102/shopease/internal/platform/httpx"
)

const Header = "Idempotency-Key"

type Claimer interface {
	Key(scope, token string) string
	Claim(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// Middleware deduplicates non-idempotent requests that carry an
// Idempotency-Key header. A repeated key is rejected with 409 until the claim
// expires. Requests that fail (4xx/5xx) release their claim.
// Requests without the header pass through untouched.
func Middleware(store Claimer, log *slog.Logger, scope func(r *http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(Header)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()
			key := store.Key(scope(r), token)

			first, err := store.Claim(ctx, key)
			if err != nil {
				httpx.WriteError(w, r, log, err)
				return
			}
			if !first {
				log.InfoContext(ctx, "duplicate request rejected", "key", key)
				httpx.WriteError(w, r, log, apperr.Conflict("a request with this idempotency key was already processed"))
				return
			}

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			if ww.Status() >= http.StatusBadRequest {
				if err := store.Release(context.WithoutCancel(ctx), key); err != nil {
					log.WarnContext(ctx, "idempotency release failed", "key", key, "err", err)
				}
			}
		})
	}
}
