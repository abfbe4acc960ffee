package domain

import (
	"errors"
	"strings"
)

// Sentinel errors. Their messages are safe to show to API clients.
var (
	ErrValidation         = errors.New("All fields are required")
	ErrDuplicateEmail     = errors.New("Email already registered")
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrUnauthenticated    = errors.New("Unauthorized")
	ErrForbidden          = errors.New("Access denied")
	ErrUserNotFound       = errors.New("User not found")
	ErrEventNotFound      = errors.New("Event not found")
	ErrDuplicateBooking   = errors.New("You already booked this event")
)

// ValidationError describes a rejected input. It matches ErrValidation under errors.Is.
type ValidationError struct {
	Problems []string
}

// NewValidationError builds a ValidationError from one or more problem descriptions.
func NewValidationError(problems ...string) *ValidationError {
	return &ValidationError{Problems: problems}
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return ErrValidation.Error()
	}
	return strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
