package middleware

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/crmapi"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/http/httperr"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/observability/logger"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/observability/requestid"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/session"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RequestIDMiddleware reuses the caller's X-Request-Id or mints one, stores it
// in the context and echoes it on the response. The CRM client forwards it to
// the backend.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestid.Header)
		if id == "" {
			id = requestid.NewRequestID()
		}
		w.Header().Set(requestid.Header, id)
		next.ServeHTTP(w, r.WithContext(requestid.SetRequestID(r.Context(), id)))
	})
}

// RequestLoggingMiddleware writes one summary line per request once the
// response is out, plus an http_error line for every 5xx. Headers and bodies
// are never logged: they carry the bearer token and the session id.
func RequestLoggingMiddleware(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := logger.InitRootErrorContext(logger.SetLoggerInContext(r.Context(), log))
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r.WithContext(ctx))

			log.Info(ctx, "http request completed",
				logger.Module("http"),
				logger.Action("request"),
				zap.String("method", r.Method),
				zap.String("route", routePattern(r)),
				zap.String("path", r.URL.Path),
				zap.String("query", redactQuery(r.URL.RawQuery)),
				zap.Int("status", sw.status),
				zap.Float64("latency_ms", float64(time.Since(start).Milliseconds())),
				zap.String("remote_addr", clientHost(r.RemoteAddr)),
				zap.String("user_agent", truncate(r.UserAgent(), 100)),
			)

			if sw.status >= http.StatusInternalServerError {
				log.Error(ctx, "http_error", serverErrorFields(r, sw.status, logger.GetRootError(ctx))...)
			}
		})
	}
}

// serverErrorFields describes the root cause recorded by the handler.
func serverErrorFields(r *http.Request, status int, cause error) []zap.Field {
	fields := []zap.Field{
		logger.Module("http"),
		logger.Action("http_error"),
		zap.Int("status", status),
		zap.String("method", r.Method),
		zap.String("route", routePattern(r)),
		zap.String("kind", errorKind(cause)),
	}
	if cause == nil {
		return append(fields, zap.String("err", "internal server error (unspecified cause)"))
	}

	fields = append(fields, zap.String("err", cause.Error()))
	var apiErr *crmapi.APIError
	if errors.As(cause, &apiErr) {
		fields = append(fields,
			zap.Int("backend_status", apiErr.StatusCode),
			zap.String("backend_operation", apiErr.Operation),
		)
	}
	return fields
}

// RecoveryMiddleware turns a panic into a 500 envelope and records it as the
// request's root error.
func RecoveryMiddleware(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}
				ctx := r.Context()
				logger.SetRootError(ctx, fmt.Errorf("panic: %v", recovered))
				log.Error(ctx, "panic_recovered",
					logger.Module("http"),
					logger.Action("panic_recovery"),
					zap.Any("panic", recovered),
					zap.String("stack", string(debug.Stack())),
					zap.String("method", r.Method),
					zap.String("route", routePattern(r)),
				)
				httperr.InternalError(w, ctx)
			}()

			next.ServeHTTP(w, r)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(status int) {
	sw.status = status
	sw.ResponseWriter.WriteHeader(status)
}

var sensitiveQueryKeys = []string{"token", "access_token", "password", "session"}

// redactQuery masks credentials and caps the length.
func redactQuery(raw string) string {
	if raw == "" {
		return ""
	}
	parts := strings.Split(raw, "&")
	for i, part := range parts {
		key, _, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		for _, s := range sensitiveQueryKeys {
			if strings.EqualFold(key, s) {
				parts[i] = key + "=[REDACTED]"
				break
			}
		}
	}
	return truncate(strings.Join(parts, "&"), 200)
}

func clientHost(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

// errorKind buckets a 5xx cause: panic, session, backend or unknown.
func errorKind(err error) string {
	var apiErr *crmapi.APIError
	switch {
	case err == nil:
		return "unknown"
	case strings.HasPrefix(err.Error(), "panic"):
		return "panic"
	case session.RequiresLogin(err):
		return "session"
	case errors.As(err, &apiErr):
		return "backend"
	}
	return "unknown"
}
