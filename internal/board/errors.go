package board

import (
	"errors"

	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/crmapi"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/session"
)

var (
	// ErrBusy is returned while a create, update or delete is in flight.
	ErrBusy = errors.New("another change is being saved")
	// ErrNoPending means Confirm was called with nothing awaiting confirmation.
	ErrNoPending = errors.New("nothing awaiting confirmation")
	// ErrWorkflowState means an assignment step was taken out of order.
	ErrWorkflowState = errors.New("contact assignment is not at this step")
)

const genericFailure = "Something went wrong. Please try again."

// messageFor is the banner text for a failed backend call.
func messageFor(err error) string {
	var apiErr *crmapi.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if session.RequiresLogin(err) {
		return "Your session has expired. Please log in again."
	}
	return genericFailure
}
