package client

import (
	"net/http"

	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/observability/requestid"
)

// RequestIDTransport copies the request id from the request context into the
// X-Request-Id header of outbound calls, so BFF and backend logs correlate.
type RequestIDTransport struct {
	base http.RoundTripper
}

// NewRequestIDTransport wraps base. A nil base means http.DefaultTransport.
func NewRequestIDTransport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &RequestIDTransport{base: base}
}

// RoundTrip never overwrites an X-Request-Id the caller already set.
func (t *RequestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get(requestid.Header) != "" {
		return t.base.RoundTrip(req)
	}

	reqID := requestid.GetRequestID(req.Context())
	if reqID == "" {
		return t.base.RoundTrip(req)
	}

	// RoundTrippers must not mutate the caller's request.
	cloned := req.Clone(req.Context())
	cloned.Header.Set(requestid.Header, reqID)

	return t.base.RoundTrip(cloned)
}
