package httperr

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/observability/logger"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/observability/requestid"
)

func testContext(t *testing.T) (context.Context, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	log, err := logger.NewWithWriter("test", "debug", &buf)
	if err != nil {
		t.Fatalf("failed to build logger: %v", err)
	}
	return logger.SetLoggerInContext(context.Background(), log), &buf
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var response ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.OK {
		t.Error("expected ok=false")
	}
	if response.Error == nil {
		t.Fatal("expected error detail, got nil")
	}
	return response
}

func TestHelpers(t *testing.T) {
	ctx, _ := testContext(t)

	tests := []struct {
		name   string
		write  func(w http.ResponseWriter)
		status int
		code   string
	}{
		{"login required", func(w http.ResponseWriter) { LoginRequired401(w, ctx) }, http.StatusUnauthorized, ErrCodeLoginRequired},
		{"not owner", func(w http.ResponseWriter) { Forbidden403(w, ctx, ErrCodeNotOwner, "owner only") }, http.StatusForbidden, ErrCodeNotOwner},
		{"not found", func(w http.ResponseWriter) { NotFound404(w, ctx, "missing") }, http.StatusNotFound, ErrCodeNotFound},
		{"busy", func(w http.ResponseWriter) { Conflict409(w, ctx, ErrCodeBusy, "saving") }, http.StatusConflict, ErrCodeBusy},
		{"bad request", func(w http.ResponseWriter) { BadRequest400(w, ctx, ErrCodeInvalidStage, "bad stage") }, http.StatusBadRequest, ErrCodeInvalidStage},
		{"rate limited", func(w http.ResponseWriter) { TooManyRequests429(w, ctx) }, http.StatusTooManyRequests, ErrCodeRateLimited},
		{"backend", func(w http.ResponseWriter) { BadGateway502(w, ctx, "Request failed with status 500") }, http.StatusBadGateway, ErrCodeBackendError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			tt.write(rr)

			if rr.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, rr.Code)
			}
			if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected Content-Type application/json, got %s", ct)
			}
			response := decode(t, rr)
			if response.Error.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, response.Error.Code)
			}
		})
	}
}

func TestWriteErrorWithFields(t *testing.T) {
	ctx, buf := testContext(t)

	rr := httptest.NewRecorder()
	fields := map[string]string{
		"title":    "title is required",
		"progress": "progress must be a multiple of 10",
	}
	BadRequest400WithFields(rr, ctx, ErrCodeValidationError, "validation failed", fields)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}
	response := decode(t, rr)
	if len(response.Error.Fields) != 2 {
		t.Errorf("expected 2 fields, got %d", len(response.Error.Fields))
	}
	if response.Error.Fields["title"] != "title is required" {
		t.Errorf("unexpected title field value: %s", response.Error.Fields["title"])
	}
	if !strings.Contains(buf.String(), `"field_progress"`) {
		t.Errorf("expected field errors in log, got %s", buf.String())
	}
	if !strings.Contains(buf.String(), `"level":"warn"`) {
		t.Errorf("expected 4xx logged at warn, got %s", buf.String())
	}
}

func TestInternalError500(t *testing.T) {
	ctx, buf := testContext(t)
	ctx = requestid.SetRequestID(ctx, "req_test")
	t.Setenv("APP_ENV", "dev")

	rr := httptest.NewRecorder()
	InternalError500(rr, ctx, "backend exploded")

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rr.Code)
	}
	response := decode(t, rr)
	if response.Error.Code != ErrCodeInternalError {
		t.Errorf("expected code %s, got %s", ErrCodeInternalError, response.Error.Code)
	}
	if response.Error.Message != "Internal Server Error" {
		t.Errorf("internal detail leaked: %s", response.Error.Message)
	}
	if response.Error.ErrorID != "req_test" {
		t.Errorf("expected error_id in dev, got %q", response.Error.ErrorID)
	}
	if !strings.Contains(buf.String(), "backend exploded") {
		t.Errorf("expected cause in log, got %s", buf.String())
	}
}

func TestInternalError500_HidesErrorIDOutsideDev(t *testing.T) {
	ctx, _ := testContext(t)
	t.Setenv("APP_ENV", "production")

	rr := httptest.NewRecorder()
	InternalError(rr, requestid.SetRequestID(ctx, "req_test"))

	if response := decode(t, rr); response.Error.ErrorID != "" {
		t.Errorf("expected no error_id, got %q", response.Error.ErrorID)
	}
}
