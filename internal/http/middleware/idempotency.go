package middleware

import (
	"bytes"
	"context"
	"net/http"

	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/http/httperr"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/idempotency"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/observability/logger"

	"go.uber.org/zap"
)

// IdempotencyHeader names the key the front end sends with a create.
const IdempotencyHeader = "Idempotency-Key"

// IdempotencyStore is satisfied by *idempotency.RedisStore.
type IdempotencyStore interface {
	CheckKey(ctx context.Context, sessionID, keyHash string) (*idempotency.CachedResponse, error)
	StoreResult(ctx context.Context, sessionID, keyHash string, resp idempotency.CachedResponse) error
}

// IdempotencyMiddleware replays the stored 2xx response of a POST retried with
// the same Idempotency-Key. It must run after SessionMiddleware.
func IdempotencyMiddleware(store IdempotencyStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := logger.GetLogger(ctx)

			key := r.Header.Get(IdempotencyHeader)
			if r.Method != http.MethodPost || key == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(key) > 255 {
				httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidParameter, "idempotency key must be 255 characters or less")
				return
			}

			sessionID, ok := GetSessionID(ctx)
			if !ok {
				log.Error(ctx, "session_id not found in context for idempotency", logger.Module("idempotency"))
				httperr.InternalError(w, ctx)
				return
			}

			keyHash := idempotency.HashKey(key)
			w.Header().Set("X-Idempotency-Key-Hash", keyHash)

			cached, err := store.CheckKey(ctx, sessionID, keyHash)
			if err != nil {
				logger.SetRootError(ctx, err)
				log.Error(ctx, "failed to check idempotency key", logger.Module("idempotency"), logger.Err(err))
				httperr.InternalError(w, ctx)
				return
			}
			if cached != nil {
				log.Info(ctx, "returning cached response for idempotent request",
					logger.Module("idempotency"),
					logger.Action("replay"),
					zap.String("key_hash", keyHash),
					zap.Int("status", cached.Status),
				)
				for k, v := range cached.Headers {
					w.Header().Set(k, v)
				}
				w.Header().Set("X-Idempotency-Replay", "true")
				w.WriteHeader(cached.Status)
				_, _ = w.Write(cached.Body)
				return
			}

			recorder := &responseRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
				body:           &bytes.Buffer{},
			}
			next.ServeHTTP(recorder, r)

			if recorder.statusCode < 200 || recorder.statusCode >= 300 {
				return
			}
			resp := idempotency.CachedResponse{
				Status:  recorder.statusCode,
				Body:    append([]byte(nil), recorder.body.Bytes()...),
				Headers: map[string]string{},
			}
			for _, h := range []string{"Content-Type", "Location"} {
				if v := recorder.Header().Get(h); v != "" {
					resp.Headers[h] = v
				}
			}
			if err := store.StoreResult(ctx, sessionID, keyHash, resp); err != nil {
				log.Error(ctx, "failed to store idempotency result", logger.Module("idempotency"), logger.Err(err))
			}
		})
	}
}

// responseRecorder captures response for storage
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
	written    bool
}

func (rr *responseRecorder) WriteHeader(code int) {
	if !rr.written {
		rr.statusCode = code
		rr.written = true
	}
	rr.ResponseWriter.WriteHeader(code)
}

func (rr *responseRecorder) Write(b []byte) (int, error) {
	if !rr.written {
		rr.WriteHeader(http.StatusOK)
	}
	rr.body.Write(b)
	return rr.ResponseWriter.Write(b)
}
