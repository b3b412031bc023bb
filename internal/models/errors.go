package models

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Typed errors below unwrap to one of these so callers can
// classify with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// NotFoundError carries a client-facing message for a missing resource.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// WordNotFound builds the error returned when a word id does not exist.
func WordNotFound(id int64) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf("Word with ID %d not found", id)}
}

// NoWordsFound builds the error returned when a random pick has nothing to
// choose from.
func NoWordsFound(difficulty *DifficultyLevel) *NotFoundError {
	if difficulty != nil {
		return &NotFoundError{Message: fmt.Sprintf("No words found at %s level", *difficulty)}
	}
	return &NotFoundError{Message: "No words found"}
}

// ConflictError reports a word that already exists. ExistingID is zero when
// the conflicting record could not be resolved.
type ConflictError struct {
	Word       string
	ExistingID int64
}

func (e *ConflictError) Error() string {
	if e.ExistingID > 0 {
		return fmt.Sprintf("Word '%s' already exists with ID %d", e.Word, e.ExistingID)
	}
	return fmt.Sprintf("Word '%s' already exists", e.Word)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// FieldError describes a single invalid field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects field errors.
type ValidationError struct {
	Errors []FieldError
}

// NewValidationError creates a ValidationError from field errors.
func NewValidationError(errs ...FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+" "+fe.Message)
	}
	return "validation error: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
