package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/config"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/observability/logger"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/telemetry"

	"github.com/stretchr/testify/assert"
)

func TestMetricsEndpoint(t *testing.T) {
	log := logger.Nop()

	scrape := func(token string, header map[string]string) *httptest.ResponseRecorder {
		r := buildRouter(RouterDeps{
			Cfg: &config.Config{MetricsToken: token},
			Log: log,
		})
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		for k, v := range header {
			req.Header.Set(k, v)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("OpenAccessWhenNoTokenSet", func(t *testing.T) {
		w := scrape("", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
		assert.Contains(t, w.Body.String(), "go_info")
	})

	t.Run("UnauthorizedWhenTokenSetAndMissingHeader", func(t *testing.T) {
		w := scrape("secret-token", nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "unauthorized")
	})

	t.Run("UnauthorizedWhenTokenSetAndHeaderMismatch", func(t *testing.T) {
		w := scrape("secret-token", map[string]string{"X-Metrics-Token": "wrong-token"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("SuccessWithMetricsHeader", func(t *testing.T) {
		w := scrape("secret-token", map[string]string{"X-Metrics-Token": "secret-token"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))
		assert.Contains(t, w.Body.String(), "go_gc_duration_seconds")
	})

	t.Run("SuccessWithBearerHeader", func(t *testing.T) {
		w := scrape("secret-token", map[string]string{"Authorization": "Bearer secret-token"})
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestMetricsEndpointExposesBoardMetrics(t *testing.T) {
	reg := telemetry.NewRegistry()
	boardMetrics := telemetry.NewBoardMetrics(reg)
	boardMetrics.SetActiveSessions(3)

	r := buildRouter(RouterDeps{
		Cfg:        &config.Config{},
		Log:        logger.Nop(),
		Prometheus: reg,
	})
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "dopaflow_active_board_sessions 3")
}
