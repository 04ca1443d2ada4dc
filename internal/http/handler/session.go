package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/board"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/domain"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/http/httperr"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/http/middleware"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/observability/logger"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/session"

	"go.uber.org/zap"
)

// SessionStore keeps BFF session ids and the bearer token behind each.
type SessionStore interface {
	Create(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, id string) error
}

// UserLookup returns the account a bearer token belongs to.
type UserLookup func(ctx context.Context, token string) (domain.User, error)

// SessionResetter forgets per-session state kept outside the registry, such as
// rate limit windows.
type SessionResetter interface {
	Reset(ctx context.Context, sessionID string) error
}

// SessionHandler trades a bearer token for a BFF session cookie.
type SessionHandler struct {
	store    SessionStore
	users    UserLookup
	registry *board.Registry
	resetter SessionResetter
	ttl      time.Duration
	secure   bool
}

func NewSessionHandler(store SessionStore, users UserLookup, registry *board.Registry, resetter SessionResetter, ttl time.Duration, secure bool) *SessionHandler {
	return &SessionHandler{
		store:    store,
		users:    users,
		registry: registry,
		resetter: resetter,
		ttl:      ttl,
		secure:   secure,
	}
}

type createSessionRequest struct {
	Token string `json:"token"`
}

type sessionResponse struct {
	SessionID string      `json:"sessionId"`
	User      domain.User `json:"user"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// CreateSession handles POST /v1/sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	var req createSessionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	token := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(req.Token), "Bearer "))
	if err := session.CheckToken(token, time.Now()); err != nil {
		httperr.LoginRequired401(w, ctx)
		return
	}

	user, err := h.users(ctx, token)
	if err != nil {
		writeBoardError(w, ctx, err)
		return
	}

	id, err := h.store.Create(ctx, token)
	if err != nil {
		logger.SetRootError(ctx, err)
		httperr.InternalError(w, ctx)
		return
	}
	ctx = logger.SetUserIDInContext(logger.SetSessionIDInContext(ctx, id), user.ID)

	expires := time.Now().Add(h.ttl)
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    id,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	log.Info(ctx, "session created",
		logger.Module("handler"),
		logger.Action("create_session"),
		zap.String("role", string(user.Role)),
	)
	writeOK(w, http.StatusCreated, sessionResponse{SessionID: id, User: user, ExpiresAt: expires})
}

// DeleteSession handles DELETE /v1/sessions/current
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	id, ok := middleware.GetSessionID(ctx)
	if !ok {
		httperr.LoginRequired401(w, ctx)
		return
	}

	if err := h.store.Delete(ctx, id); err != nil {
		logger.SetRootError(ctx, err)
		httperr.InternalError(w, ctx)
		return
	}
	h.registry.Drop(id)
	if h.resetter != nil {
		if err := h.resetter.Reset(ctx, id); err != nil {
			log.Warn(ctx, "failed to reset rate limit window",
				logger.Module("handler"),
				logger.Action("delete_session"),
				zap.Error(err),
			)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	log.Info(ctx, "session deleted",
		logger.Module("handler"),
		logger.Action("delete_session"),
	)
	w.WriteHeader(http.StatusNoContent)
}
