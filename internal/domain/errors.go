package domain

import "errors"

var (
	// Validation errors: caught before any network call.
	ErrValidation           = errors.New("validation failed")
	ErrInvalidStage         = errors.New("invalid stage")
	ErrInvalidStatus        = errors.New("invalid status")
	ErrInvalidPriority      = errors.New("invalid priority")
	ErrStatusRequiresClosed = errors.New("status can only change once the opportunity is closed")

	// Authorization errors: pre-empted client-side.
	ErrNotOwner = errors.New("only the owner can modify this opportunity")

	// Lookup errors
	ErrNotFound = errors.New("not found")
)
