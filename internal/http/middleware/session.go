package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/http/httperr"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/observability/logger"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/session"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const sessionIDKey contextKey = "bff_session_id"

// Where the BFF session id travels: a cookie for browsers, a header for scripts.
const (
	SessionCookie = "dopaflow_session"
	SessionHeader = "X-Session-Id"
)

// SessionStore resolves a BFF session id to its bearer token.
type SessionStore interface {
	Lookup(ctx context.Context, id string) (string, error)
}

// SessionIDFromRequest reads the session id from the cookie, then the header.
func SessionIDFromRequest(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	return r.Header.Get(SessionHeader)
}

// SessionMiddleware rejects requests without a live session with 401
// LOGIN_REQUIRED and stores the session id in the context otherwise.
func SessionMiddleware(store SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := logger.GetLogger(ctx)

			id := SessionIDFromRequest(r)
			if id == "" {
				httperr.LoginRequired401(w, ctx)
				return
			}

			token, err := store.Lookup(ctx, id)
			if err == nil {
				err = session.CheckToken(token, time.Now())
			}
			if err != nil {
				if !session.RequiresLogin(err) {
					logger.SetRootError(ctx, err)
					log.Error(ctx, "session lookup failed",
						logger.Module("session"),
						logger.Action("lookup"),
						logger.Err(err),
					)
					httperr.InternalError(w, ctx)
					return
				}
				log.Debug(ctx, "session rejected",
					logger.Module("session"),
					logger.Action("lookup"),
					zap.Bool("expired", errors.Is(err, session.ErrTokenExpired)),
				)
				httperr.LoginRequired401(w, ctx)
				return
			}

			trace.SpanFromContext(ctx).AddEvent("session_resolved")

			ctx = context.WithValue(ctx, sessionIDKey, id)
			ctx = logger.SetSessionIDInContext(ctx, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSessionID retrieves the validated session id from context
func GetSessionID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey).(string)
	return id, ok && id != ""
}

// WithSessionID stores id as the validated session id. Tests and the CLI use it
// to skip the store lookup.
func WithSessionID(ctx context.Context, id string) context.Context {
	ctx = context.WithValue(ctx, sessionIDKey, id)
	return logger.SetSessionIDInContext(ctx, id)
}
