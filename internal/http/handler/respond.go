package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/board"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/crmapi"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/domain"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/http/httperr"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/observability/logger"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/session"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

func writeOK(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"ok":   true,
		"data": data,
	})
}

// decodeBody reads a JSON body into v. An empty body leaves v untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	ctx := r.Context()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		logger.GetLogger(ctx).Warn(ctx, "invalid request body",
			logger.Module("handler"),
			logger.Action("decode_body"),
			zap.Error(err),
		)
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidFormat, "request body must be valid JSON")
		return false
	}
	return true
}

// opportunityID parses the {id} URL parameter.
func opportunityID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		httperr.BadRequest400(w, r.Context(), httperr.ErrCodeInvalidParameter, "opportunity id must be a positive integer")
		return 0, false
	}
	return id, true
}

// writeBoardError maps controller, session and backend errors onto the error
// envelope.
func writeBoardError(w http.ResponseWriter, ctx context.Context, err error) {
	var validation *domain.ValidationError
	var apiErr *crmapi.APIError

	switch {
	case errors.As(err, &validation):
		httperr.BadRequest400WithFields(w, ctx, httperr.ErrCodeValidationError, "validation failed", validation.Fields)
	case errors.Is(err, domain.ErrInvalidStage):
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidStage, err.Error())
	case errors.Is(err, domain.ErrInvalidStatus), errors.Is(err, domain.ErrStatusRequiresClosed):
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidStatus, err.Error())
	case errors.Is(err, domain.ErrInvalidPriority):
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidPriority, err.Error())
	case errors.Is(err, domain.ErrValidation):
		httperr.BadRequest400(w, ctx, httperr.ErrCodeValidationError, err.Error())
	case errors.Is(err, domain.ErrNotOwner):
		httperr.Forbidden403(w, ctx, httperr.ErrCodeNotOwner, domain.ErrNotOwner.Error())
	case errors.Is(err, domain.ErrNotFound):
		httperr.NotFound404(w, ctx, "opportunity not found")
	case errors.Is(err, board.ErrBusy):
		httperr.Conflict409(w, ctx, httperr.ErrCodeBusy, err.Error())
	case errors.Is(err, board.ErrNoPending), errors.Is(err, board.ErrWorkflowState):
		httperr.Conflict409(w, ctx, httperr.ErrCodeConflict, err.Error())
	case session.RequiresLogin(err):
		httperr.LoginRequired401(w, ctx)
	case crmapi.IsNotFound(err):
		httperr.NotFound404(w, ctx, backendMessage(err))
	case crmapi.IsForbidden(err):
		httperr.Forbidden403(w, ctx, httperr.ErrCodeForbidden, backendMessage(err))
	case errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500:
		httperr.WriteError(w, ctx, apiErr.StatusCode, rejectionCode(apiErr.StatusCode), backendMessage(err))
	case errors.As(err, &apiErr):
		logger.SetRootError(ctx, err)
		httperr.BadGateway502(w, ctx, apiErr.Message)
	default:
		logger.SetRootError(ctx, err)
		httperr.InternalError(w, ctx)
	}
}

func backendMessage(err error) string {
	var apiErr *crmapi.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

// rejectionCode names a 4xx the backend returned for the caller's input.
func rejectionCode(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return httperr.ErrCodeValidationError
	case http.StatusConflict:
		return httperr.ErrCodeConflict
	case http.StatusTooManyRequests:
		return httperr.ErrCodeRateLimited
	}
	return httperr.ErrCodeBackendError
}
