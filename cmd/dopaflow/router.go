package main

import (
	"context"
	"net/http"
	"time"

	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/config"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/http/docs"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/http/handler"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/http/middleware"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/observability/logger"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/telemetry"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Pinger is the readiness probe of a dependency.
type Pinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// RouterDeps holds what buildRouter wires. Nil handlers leave their routes out.
type RouterDeps struct {
	Cfg         *config.Config
	Log         *logger.Logger
	Metrics     *telemetry.Metrics
	Prometheus  *prometheus.Registry
	Redis       Pinger
	Sessions    middleware.SessionStore
	RateLimiter middleware.Limiter
	Idempotency middleware.IdempotencyStore

	BoardHandler   *handler.BoardHandler
	SessionHandler *handler.SessionHandler
}

func buildRouter(deps RouterDeps) chi.Router {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.RequestLoggingMiddleware(deps.Log))
	r.Use(middleware.RecoveryMiddleware(deps.Log))
	r.Use(telemetry.OTelMiddleware(deps.Cfg.OTELServiceName))
	if deps.Metrics != nil {
		r.Use(telemetry.MetricsMiddleware(deps.Metrics))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Cfg.GetAllowedOrigins(),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", middleware.SessionHeader, middleware.IdempotencyHeader, "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/openapi.yaml", docs.OpenAPIHandler().ServeHTTP)
	r.Get("/docs", docs.ScalarDocsHandler("/openapi.yaml").ServeHTTP)

	promRegistry := deps.Prometheus
	if promRegistry == nil {
		promRegistry = telemetry.NewRegistry()
	}
	r.Get("/metrics", telemetry.MetricsHandler(promRegistry, deps.Cfg.MetricsToken).ServeHTTP)

	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if deps.Redis == nil {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ready","note":"redis is not configured"}`))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := deps.Redis.Ping(ctx).Err(); err != nil {
			deps.Log.Error(ctx, "readiness check failed: redis unavailable", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"error","message":"redis unavailable"}`))
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	})

	if deps.SessionHandler != nil {
		r.Post("/v1/sessions", deps.SessionHandler.CreateSession)
		r.With(middleware.SessionMiddleware(deps.Sessions)).Delete("/v1/sessions/current", deps.SessionHandler.DeleteSession)
	}

	if deps.BoardHandler != nil {
		r.Route("/v1/board", func(r chi.Router) {
			r.Use(middleware.SessionMiddleware(deps.Sessions))
			if deps.RateLimiter != nil {
				r.Use(mutationsOnly(middleware.RateLimitMiddleware(deps.RateLimiter, deps.Cfg.RateLimitPerSessionPerMin)))
			}

			var create func(http.Handler) http.Handler
			if deps.Idempotency != nil {
				create = middleware.IdempotencyMiddleware(deps.Idempotency)
			}
			deps.BoardHandler.Routes(r, create)
		})
	}

	return r
}

// mutationsOnly applies mw to every request except reads.
func mutationsOnly(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		limited := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}
			limited.ServeHTTP(w, r)
		})
	}
}
