package requestid

import (
	"context"

	"github.com/google/uuid"
)

// Header is the header used to propagate request ids to and from the backend.
const Header = "X-Request-Id"

type contextKey string

const requestIDContextKey contextKey = "request_id"

// NewRequestID returns a time-ordered id of the form req_<uuidv7>.
func NewRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return "req_" + uuid.NewString()
	}
	return "req_" + id.String()
}

// GetRequestID retrieves request ID from context
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDContextKey).(string); ok {
		return v
	}
	return ""
}

// SetRequestID stores request ID in context
func SetRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, id)
}

// Ensure returns ctx unchanged when it already carries an id, otherwise a
// context with a fresh one. CLI commands call it once per invocation.
func Ensure(ctx context.Context) context.Context {
	if GetRequestID(ctx) != "" {
		return ctx
	}
	return SetRequestID(ctx, NewRequestID())
}
