package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// AppError carries an HTTP-ish status code alongside a message and wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError wrapping an underlying cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that matches ErrNotFound via errors.Is.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}

// InvalidTransitionError identifies an illegal state machine transition, carrying
// the old status, the attempted status, and the legal alternatives for diagnostics.
type InvalidTransitionError struct {
	Entity    string
	From      string
	To        string
	LegalNext []string
}

func (e *InvalidTransitionError) Error() string {
	legal := "none (terminal state)"
	if len(e.LegalNext) > 0 {
		legal = strings.Join(e.LegalNext, ", ")
	}
	return fmt.Sprintf("%s cannot transition from %s to %s (allowed: %s)", e.Entity, e.From, e.To, legal)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// NewInvalidTransitionError builds an InvalidTransitionError for the given entity.
func NewInvalidTransitionError(entity, from, to string, legalNext []string) *InvalidTransitionError {
	return &InvalidTransitionError{Entity: entity, From: from, To: to, LegalNext: legalNext}
}

// IsTerminalStateError reports whether err is an invalid transition out of a
// terminal state (no legal next states).
func IsTerminalStateError(err error) bool {
	var ite *InvalidTransitionError
	if errors.As(err, &ite) {
		return len(ite.LegalNext) == 0
	}
	return false
}
