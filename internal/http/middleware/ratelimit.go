package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/http/httperr"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/observability/logger"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/ratelimit"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Limiter is satisfied by *ratelimit.RedisRateLimiter.
type Limiter interface {
	AllowRequest(ctx context.Context, sessionID string, limit int) (bool, int, error)
}

// RateLimitMiddleware enforces limitPerMin requests per BFF session. It must
// run after SessionMiddleware.
func RateLimitMiddleware(limiter Limiter, limitPerMin int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := logger.GetLogger(ctx)

			sessionID, ok := GetSessionID(ctx)
			if !ok {
				log.Error(ctx, "session_id not found in context for rate limiting", logger.Module("ratelimit"))
				httperr.InternalError(w, ctx)
				return
			}

			allowed, remaining, err := limiter.AllowRequest(ctx, sessionID, limitPerMin)
			if err != nil {
				// Fail open when Redis is unavailable.
				log.Warn(ctx, "rate limit check failed, allowing request",
					logger.Module("ratelimit"),
					logger.Err(err),
				)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", limitPerMin))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
			w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", time.Now().Add(ratelimit.Window).Unix()))

			if !allowed {
				trace.SpanFromContext(ctx).AddEvent("rate_limit_exceeded")
				log.Warn(ctx, "rate limit exceeded",
					logger.Module("ratelimit"),
					zap.Int("limit", limitPerMin),
				)

				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(ratelimit.Window.Seconds())))
				httperr.TooManyRequests429(w, ctx)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
