package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmehra2102/shopease/internal/platform/apperr"
	"github.com/dmehra2102/shopease/internal/platform/httpx"
)

type Validator interface {
	Validate(tokenString string) (Principal, error)
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// Authenticate attaches the bearer token's principal to the request context.
// Anonymous requests pass through; a malformed or invalid token is rejected.
func Authenticate(v Validator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				httpx.WriteError(w, r, log, apperr.Unauthorized("invalid authorization header"))
				return
			}
			p, err := v.Validate(token)
			if err != nil {
				log.WarnContext(r.Context(), "unauthorized access - invalid token", "err", err)
				httpx.WriteError(w, r, log, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

func RequireAuth(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := FromContext(r.Context()); !ok {
				httpx.WriteError(w, r, log, apperr.Unauthorized("authentication credentials were not provided"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func RequireAdmin(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := checkAdmin(r.Context()); err != nil {
				httpx.WriteError(w, r, log, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminOrReadOnly lets safe methods through for everyone and requires a staff
// principal for writes.
func AdminOrReadOnly(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
			default:
				if err := checkAdmin(r.Context()); err != nil {
					httpx.WriteError(w, r, log, err)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func checkAdmin(ctx context.Context) error {
	p, ok := FromContext(ctx)
	if !ok {
		return apperr.Unauthorized("authentication credentials were not provided")
	}
	if !p.IsStaff {
		return apperr.Forbidden("you do not have permission to perform this action")
	}
	return nil
}
