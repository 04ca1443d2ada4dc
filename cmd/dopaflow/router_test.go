package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/board"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/config"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/crmapi"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/http/handler"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/http/middleware"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/observability/logger"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/session"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(ctx context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", p.err)
}

// memSessions is an in-memory session store.
type memSessions struct {
	mu     sync.Mutex
	tokens map[string]string
	seq    int
}

func newMemSessions() *memSessions {
	return &memSessions{tokens: map[string]string{}}
}

func (s *memSessions) Create(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	id := "sess-" + strings.Repeat("x", s.seq)
	s.tokens[id] = token
	return id, nil
}

func (s *memSessions) Lookup(_ context.Context, id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := s.tokens[id]
	if !ok {
		return "", session.ErrNoToken
	}
	return token, nil
}

func (s *memSessions) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, id)
	return nil
}

func (s *memSessions) Source(id string) crmapi.TokenSource {
	return crmapi.TokenFunc(func(ctx context.Context) (string, error) {
		return s.Lookup(ctx, id)
	})
}

// countingLimiter allows the first limit requests per session.
type countingLimiter struct {
	mu     sync.Mutex
	counts map[string]int
	resets int
}

func (l *countingLimiter) AllowRequest(_ context.Context, id string, limit int) (bool, int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.counts == nil {
		l.counts = map[string]int{}
	}
	l.counts[id]++
	return l.counts[id] <= limit, max(limit-l.counts[id], 0), nil
}

func (l *countingLimiter) Reset(_ context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.counts, id)
	l.resets++
	return nil
}

func TestHealthEndpoint(t *testing.T) {
	r := buildRouter(RouterDeps{Cfg: &config.Config{}, Log: logger.Nop()})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestReadyEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		redis      Pinger
		wantStatus int
		wantBody   string
	}{
		{name: "redis up", redis: fakePinger{}, wantStatus: http.StatusOK, wantBody: `"ready"`},
		{name: "redis down", redis: fakePinger{err: errors.New("connection refused")}, wantStatus: http.StatusServiceUnavailable, wantBody: "redis unavailable"},
		{name: "no redis", redis: nil, wantStatus: http.StatusOK, wantBody: "not configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := buildRouter(RouterDeps{Cfg: &config.Config{}, Log: logger.Nop(), Redis: tt.redis})

			req := httptest.NewRequest(http.MethodGet, "/ready", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestDocsEndpoints(t *testing.T) {
	r := buildRouter(RouterDeps{Cfg: &config.Config{}, Log: logger.Nop()})

	for path, want := range map[string]string{
		"/openapi.yaml": "openapi:",
		"/docs":         "api-reference",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, w.Body.String(), want, path)
	}
}

type testServer struct {
	router   http.Handler
	sessions *memSessions
	limiter  *countingLimiter
	registry *board.Registry
	crm      *fakeCRM
}

func newTestServer(t *testing.T, rateLimit int) *testServer {
	t.Helper()
	crm := &fakeCRM{}
	ts := httptest.NewServer(crm)
	t.Cleanup(ts.Close)

	backend, err := crmapi.New(crmapi.Config{BaseURL: ts.URL, Tokens: session.StaticToken(""), Timeout: 5 * time.Second})
	require.NoError(t, err)

	cfg := &config.Config{
		AllowedOrigins:            "http://localhost:3000",
		RateLimitPerSessionPerMin: rateLimit,
	}
	sessions := newMemSessions()
	limiter := &countingLimiter{}
	registry := board.NewRegistry(time.Hour, nil)
	log := logger.Nop()

	r := buildRouter(RouterDeps{
		Cfg:            cfg,
		Log:            log,
		Sessions:       sessions,
		RateLimiter:    limiter,
		BoardHandler:   handler.NewBoardHandler(registry, newBoardFactory(backend, sessions, board.DefaultOptions(), log)),
		SessionHandler: handler.NewSessionHandler(sessions, userLookup(backend), registry, limiter, time.Hour, false),
	})
	return &testServer{router: r, sessions: sessions, limiter: limiter, registry: registry, crm: crm}
}

func (s *testServer) do(t *testing.T, method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(t *testing.T) *http.Cookie {
	t.Helper()
	w := s.do(t, http.MethodPost, "/v1/sessions", `{"token":"tok-1"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func TestBoardRequiresSession(t *testing.T) {
	s := newTestServer(t, 10)

	w := s.do(t, http.MethodGet, "/v1/board", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "LOGIN_REQUIRED")

	w = s.do(t, http.MethodGet, "/v1/board", "", &http.Cookie{Name: middleware.SessionCookie, Value: "unknown"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, s.crm.called("GET /opportunities/all"))
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestServer(t, 10)

	w := s.do(t, http.MethodPost, "/v1/sessions", `{"token":"wrong"}`, nil)
	assert.NotEqual(t, http.StatusCreated, w.Code)

	cookie := s.login(t)

	w = s.do(t, http.MethodGet, "/v1/board", "", cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var env struct {
		OK   bool       `json:"ok"`
		Data board.View `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.OK)
	assert.Equal(t, int64(7), env.Data.User.ID)
	require.Len(t, env.Data.Columns, 4)
	assert.Equal(t, 1, env.Data.Columns[0].Count)
	assert.Equal(t, 1, s.registry.Len())

	w = s.do(t, http.MethodDelete, "/v1/sessions/current", "", cookie)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 0, s.registry.Len())
	assert.Equal(t, 1, s.limiter.resets)

	w = s.do(t, http.MethodGet, "/v1/board", "", cookie)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRateLimitAppliesToMutationsOnly(t *testing.T) {
	s := newTestServer(t, 1)
	cookie := s.login(t)

	for i := 0; i < 3; i++ {
		w := s.do(t, http.MethodGet, "/v1/board", "", cookie)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := s.do(t, http.MethodPut, "/v1/board/opportunities/5/stage", `{"stage":"QUALIFICATION"}`, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))

	w = s.do(t, http.MethodPut, "/v1/board/opportunities/5/stage", `{"stage":"NEGOTIATION"}`, cookie)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, 10)

	req := httptest.NewRequest(http.MethodOptions, "/v1/board", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	req.Header.Set("Access-Control-Request-Headers", middleware.IdempotencyHeader)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}
