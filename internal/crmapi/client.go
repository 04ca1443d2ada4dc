// Package crmapi is the typed client of the DopaFlow CRM REST backend.
package crmapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/http/client"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/observability/logger"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/telemetry"

	"go.uber.org/zap"
)

// TokenSource yields the bearer token for each call.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func(ctx context.Context) (string, error)

// Token implements TokenSource.
func (f TokenFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// Config configures a Client.
type Config struct {
	BaseURL    string
	Tokens     TokenSource
	HTTPClient *http.Client // defaults to client.NewBackendHTTPClient
	Timeout    time.Duration
	Metrics    *telemetry.BoardMetrics
	Logger     *logger.Logger
}

// Client calls the CRM backend. It is safe for concurrent use.
type Client struct {
	baseURL string
	tokens  TokenSource
	http    *http.Client
	metrics *telemetry.BoardMetrics
	log     *logger.Logger
}

// New builds a client from cfg.
func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		return nil, errors.New("crmapi: base URL is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("crmapi: invalid base URL: %w", err)
	}
	if cfg.Tokens == nil {
		return nil, errors.New("crmapi: token source is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = client.NewBackendHTTPClient(cfg.Timeout)
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Client{
		baseURL: base,
		tokens:  cfg.Tokens,
		http:    httpClient,
		metrics: cfg.Metrics,
		log:     log,
	}, nil
}

// WithTokens returns a copy of c that authenticates with tokens. The HTTP client
// and its connection pool are shared.
func (c *Client) WithTokens(tokens TokenSource) *Client {
	clone := *c
	clone.tokens = tokens
	return &clone
}

// do sends one request. A nil out discards the response body.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, in, out any) (err error) {
	start := time.Now()
	defer func() {
		c.metrics.ObserveBackend(op, time.Since(start), err)
	}()

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if token == "" {
		return fmt.Errorf("%s: %w", op, ErrNoToken)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: failed to marshal request: %w", op, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Debug(ctx, "calling crm backend",
		logger.Module("crmapi"),
		logger.Action(op),
		zap.String("method", method),
		zap.String("path", path),
	)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error(ctx, "crm request failed",
			logger.Module("crmapi"),
			logger.Action(op),
			logger.Err(err),
		)
		return fmt.Errorf("%s: failed to send request: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := decodeAPIError(resp)
		apiErr.Operation = op
		c.log.Warn(ctx, "crm returned non-2xx status",
			logger.Module("crmapi"),
			logger.Action(op),
			zap.Int("status", resp.StatusCode),
			zap.String("backend_message", apiErr.Message),
		)
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if len(raw) > 0 {
		var body struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &body) == nil {
			apiErr.Message = strings.TrimSpace(body.Message)
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = genericMessage(resp.StatusCode)
	}
	return apiErr
}

func idPath(format string, id int64) string {
	return fmt.Sprintf(format, id)
}
