package telemetry

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// BoardMetrics are the Prometheus collectors scraped from /metrics.
// A nil *BoardMetrics records nothing, so library callers may omit it.
type BoardMetrics struct {
	BackendRequests *prometheus.CounterVec
	BackendLatency  *prometheus.HistogramVec
	BoardActions    *prometheus.CounterVec
	ActiveSessions  prometheus.Gauge
}

// NewRegistry returns a registry carrying the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// NewBoardMetrics creates the board collectors and registers them on reg.
func NewBoardMetrics(reg prometheus.Registerer) *BoardMetrics {
	m := &BoardMetrics{
		BackendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dopaflow",
			Name:      "backend_requests_total",
			Help:      "Calls to the CRM REST backend by operation and outcome.",
		}, []string{"operation", "outcome"}),
		BackendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dopaflow",
			Name:      "backend_request_duration_seconds",
			Help:      "Latency of CRM REST backend calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		BoardActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dopaflow",
			Name:      "board_actions_total",
			Help:      "Board controller actions by action and outcome.",
		}, []string{"action", "outcome"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dopaflow",
			Name:      "active_board_sessions",
			Help:      "Board controllers currently held by the server.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.BackendRequests, m.BackendLatency, m.BoardActions, m.ActiveSessions)
	}
	return m
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}

// ObserveBackend records one backend call.
func (m *BoardMetrics) ObserveBackend(operation string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.BackendRequests.WithLabelValues(operation, outcome(err)).Inc()
	m.BackendLatency.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveAction records one controller action.
func (m *BoardMetrics) ObserveAction(action string, err error) {
	if m == nil {
		return
	}
	m.BoardActions.WithLabelValues(action, outcome(err)).Inc()
}

// SetActiveSessions reports the size of the controller registry.
func (m *BoardMetrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(n))
}

// MetricsHandler serves reg in the Prometheus text format. When token is set the
// scraper must send it in X-Metrics-Token or as a bearer token.
func MetricsHandler(reg *prometheus.Registry, token string) http.Handler {
	h := promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	if token == "" {
		return h
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := r.Header.Get("X-Metrics-Token")
		if got == "" {
			got = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		}
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		h.ServeHTTP(w, r)
	})
}
