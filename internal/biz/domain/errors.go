package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrForbidden            = errors.New("forbidden")
	ErrIllegalTransition    = errors.New("illegal status transition")
	ErrMutationInFlight     = errors.New("another change to this consultation is in progress")
	ErrConfirmationRequired = errors.New("rejecting a consultation requires explicit confirmation")
	ErrEmptyMessage         = errors.New("message is empty")
	ErrSendInFlight         = errors.New("a message is already being sent")
	ErrConversationClosed   = errors.New("conversation is closed")
	ErrNotAuthenticated     = errors.New("not authenticated")
)

// APIError is an error indicator returned by the collaborating API.
// Message is the only user-facing diagnostic.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// ValidationError is a rejection that happens before any network call
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// TransitionError describes a rejected state change
type TransitionError struct {
	ID   string
	From ConsultationStatus
	To   ConsultationStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("consultation %s: cannot move from %s to %s", e.ID, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrIllegalTransition
}
