package crmapi

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNoToken is returned when the token source has nothing to send.
var ErrNoToken = errors.New("no bearer token available")

// APIError is a non-2xx response from the CRM backend. Message is the backend's
// `message` field, or a generic text when the body carried none.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
	Operation  string `json:"-"`
}

func (e *APIError) Error() string {
	return e.Message
}

func genericMessage(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "Your session has expired. Please log in again."
	case http.StatusForbidden:
		return "You are not allowed to perform this action."
	case http.StatusNotFound:
		return "The requested resource was not found."
	}
	return fmt.Sprintf("Request failed with status %d", status)
}

func statusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	return statusOf(err) == http.StatusNotFound
}

// IsUnauthorized reports whether the backend rejected the bearer token, or
// there was no token to send.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrNoToken) || statusOf(err) == http.StatusUnauthorized
}

// IsForbidden reports whether err is a 403 from the backend.
func IsForbidden(err error) bool {
	return statusOf(err) == http.StatusForbidden
}
