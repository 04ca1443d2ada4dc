package client

import (
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultTimeout bounds a whole backend call when the caller does not pick one.
const DefaultTimeout = 30 * time.Second

const maxRedirects = 10

// NewBackendHTTPClient builds the client used to reach the CRM REST backend.
//
// The transport stack is otelhttp (client spans) over RequestIDTransport
// (X-Request-Id propagation) over a cloned http.DefaultTransport.
// http.DefaultClient has no timeout, so timeout <= 0 falls back to DefaultTimeout.
func NewBackendHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	base := http.DefaultTransport.(*http.Transport).Clone()
	transport := otelhttp.NewTransport(
		NewRequestIDTransport(base),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return "crm " + r.Method + " " + r.URL.Path
		}),
	)

	return &http.Client{
		Transport:     transport,
		Timeout:       timeout,
		CheckRedirect: limitRedirects,
	}
}

// NewPlainHTTPClient is NewBackendHTTPClient without tracing, for CLI runs where
// no tracer provider is installed.
func NewPlainHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	base := http.DefaultTransport.(*http.Transport).Clone()

	return &http.Client{
		Transport:     NewRequestIDTransport(base),
		Timeout:       timeout,
		CheckRedirect: limitRedirects,
	}
}

func limitRedirects(_ *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return http.ErrUseLastResponse
	}
	return nil
}
