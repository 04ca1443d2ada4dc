package httperr

import (
	"context"
	"encoding/json"
	"net/http"
	"os"

	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/observability/logger"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/observability/requestid"

	"go.uber.org/zap"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	OK    bool         `json:"ok"`
	Error *ErrorDetail `json:"error"`
}

// ErrorDetail contains the error information
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	ErrorID string            `json:"error_id,omitempty"`
}

// Error codes for 401 Unauthorized
const (
	ErrCodeLoginRequired  = "LOGIN_REQUIRED"
	ErrCodeMissingSession = "MISSING_SESSION"
	ErrCodeInvalidToken   = "INVALID_TOKEN"
)

// Error codes for 403/404/409
const (
	ErrCodeNotOwner  = "NOT_OWNER"
	ErrCodeForbidden = "FORBIDDEN"
	ErrCodeNotFound  = "NOT_FOUND"
	ErrCodeBusy      = "BUSY"
	ErrCodeConflict  = "CONFLICT"
)

// Error codes for 400 Bad Request (validation errors)
const (
	ErrCodeInvalidParameter = "INVALID_PARAMETER"
	ErrCodeInvalidFormat    = "INVALID_FORMAT"
	ErrCodeValidationError  = "VALIDATION_ERROR"
	ErrCodeInvalidStage     = "INVALID_STAGE"
	ErrCodeInvalidStatus    = "INVALID_STATUS"
	ErrCodeInvalidPriority  = "INVALID_PRIORITY"
)

// Error codes for 429 and 5xx
const (
	ErrCodeRateLimited   = "RATE_LIMITED"
	ErrCodeBackendError  = "BACKEND_ERROR"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// WriteError writes a standardized error response
func WriteError(w http.ResponseWriter, ctx context.Context, status int, code, message string) {
	writeError(w, ctx, status, &ErrorDetail{Code: code, Message: message})
}

// WriteErrorWithFields writes a standardized error response with field-level details
func WriteErrorWithFields(w http.ResponseWriter, ctx context.Context, status int, code, message string, fields map[string]string) {
	writeError(w, ctx, status, &ErrorDetail{Code: code, Message: message, Fields: fields})
}

func writeError(w http.ResponseWriter, ctx context.Context, status int, detail *ErrorDetail) {
	log := logger.GetLogger(ctx)

	fields := make([]zap.Field, 0, len(detail.Fields)+3)
	fields = append(fields,
		logger.Module("http"),
		zap.Int("status_code", status),
		zap.String("error_code", detail.Code),
		zap.String("error_message", detail.Message),
	)
	for k, v := range detail.Fields {
		fields = append(fields, zap.String("field_"+k, v))
	}
	if status >= http.StatusInternalServerError {
		log.Error(ctx, "request failed", fields...)
	} else {
		log.Warn(ctx, "request rejected", fields...)
	}

	writeJSON(w, status, ErrorResponse{OK: false, Error: detail})
}

func writeJSON(w http.ResponseWriter, status int, body ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Unauthorized401 writes a 401 Unauthorized response
func Unauthorized401(w http.ResponseWriter, ctx context.Context, code, message string) {
	WriteError(w, ctx, http.StatusUnauthorized, code, message)
}

// LoginRequired401 tells the front end to send the user to the login page.
func LoginRequired401(w http.ResponseWriter, ctx context.Context) {
	Unauthorized401(w, ctx, ErrCodeLoginRequired, "Your session has expired. Please log in again.")
}

// Forbidden403 writes a 403 Forbidden response
func Forbidden403(w http.ResponseWriter, ctx context.Context, code, message string) {
	WriteError(w, ctx, http.StatusForbidden, code, message)
}

// NotFound404 writes a 404 Not Found response
func NotFound404(w http.ResponseWriter, ctx context.Context, message string) {
	WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, message)
}

// Conflict409 writes a 409 Conflict response
func Conflict409(w http.ResponseWriter, ctx context.Context, code, message string) {
	WriteError(w, ctx, http.StatusConflict, code, message)
}

// BadRequest400 writes a 400 Bad Request response
func BadRequest400(w http.ResponseWriter, ctx context.Context, code, message string) {
	WriteError(w, ctx, http.StatusBadRequest, code, message)
}

// BadRequest400WithFields writes a 400 Bad Request response with field-level errors
func BadRequest400WithFields(w http.ResponseWriter, ctx context.Context, code, message string, fields map[string]string) {
	WriteErrorWithFields(w, ctx, http.StatusBadRequest, code, message, fields)
}

// BadGateway502 reports a failed CRM backend call. message is shown to the user.
func BadGateway502(w http.ResponseWriter, ctx context.Context, message string) {
	WriteError(w, ctx, http.StatusBadGateway, ErrCodeBackendError, message)
}

// TooManyRequests429 writes a 429 response.
func TooManyRequests429(w http.ResponseWriter, ctx context.Context) {
	WriteError(w, ctx, http.StatusTooManyRequests, ErrCodeRateLimited, "rate limit exceeded")
}

// InternalError500 writes a 500 Internal Server Error response
func InternalError500(w http.ResponseWriter, ctx context.Context, message string) {
	reqID := requestid.GetRequestID(ctx)

	logger.GetLogger(ctx).Error(ctx, "internal server error",
		logger.Module("http"),
		zap.String("error_message", message),
	)

	// In prod, return generic message for security
	response := ErrorResponse{
		OK: false,
		Error: &ErrorDetail{
			Code:    ErrCodeInternalError,
			Message: "Internal Server Error",
		},
	}
	if os.Getenv("APP_ENV") == "dev" {
		response.Error.ErrorID = reqID
	}
	writeJSON(w, http.StatusInternalServerError, response)
}

// InternalError is an alias for InternalError500
func InternalError(w http.ResponseWriter, ctx context.Context) {
	InternalError500(w, ctx, "internal server error")
}
