package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/frahmantamala/reputation-management/internal"
	"github.com/frahmantamala/reputation-management/pkg/logger"
)

type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimit throttles requests per key. Limiter failures let the request through.
func RateLimit(limiter Limiter, scope string, retryAfter time.Duration, key func(r *http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := scope + ":" + key(r)
			allowed, err := limiter.Allow(r.Context(), k)
			if err != nil {
				logger.From(r.Context()).Warn("rate limiter unavailable", "key", k, "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
				writeAppError(w, internal.NewTooManyRequestsError("Too many requests, try again later"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
