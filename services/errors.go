package services

import (
	"errors"
	"fmt"
)

var (
	ErrValidation           = errors.New("validation error")
	ErrAlreadyExists        = errors.New("already exists")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrMissingToken         = errors.New("missing token")
	ErrInvalidToken         = errors.New("invalid token")
	ErrNotFound             = errors.New("not found")
	ErrNoQuestionsAvailable = errors.New("no questions available")
	ErrRateLimited          = errors.New("rate limited")
)

var (
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)
	ErrQuestionNotFound = fmt.Errorf("question %w", ErrNotFound)
	ErrResultNotFound   = fmt.Errorf("quiz result %w", ErrNotFound)
)

// ValidationError names the first offending field of a rejected input.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
