package domain

import "errors"

// Sentinel errors shared across services and repositories.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
)

// Registration business-rule errors. Controllers surface all three under a
// single "registration" field rather than per-field messages.
var (
	ErrCapacityExceeded     = errors.New("event has reached its maximum capacity")
	ErrEventAlreadyOccurred = errors.New("event has already occurred")
	ErrAlreadyRegistered    = errors.New("already registered for this event")
)

// ValidationErrors maps a field name to a human-readable message.
// It implements error so services can return it directly.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	for field, msg := range v {
		return field + ": " + msg
	}
	return "validation failed"
}

// AsValidationErrors unwraps err into ValidationErrors if it is one.
func AsValidationErrors(err error) (ValidationErrors, bool) {
	var v ValidationErrors
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
