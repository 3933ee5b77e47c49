package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound         = errors.New("resource not found")
	ErrDuplicateID      = errors.New("duplicate id")
	ErrInvalidInput     = errors.New("invalid input")
	ErrValidation       = errors.New("validation failed")
	ErrPersistence      = errors.New("persistence error")
	ErrProcessingFailed = errors.New("processing failed")
	ErrGenerationFailed = errors.New("generation failed")
)

// Validation failures with a stable code. All of them match ErrValidation.
var (
	ErrFileTooLarge      = NewAppError("FILE_TOO_LARGE", "file exceeds the maximum allowed size", ErrValidation)
	ErrUnsupportedType   = NewAppError("UNSUPPORTED_TYPE", "media type is not supported", ErrValidation)
	ErrNoReadyDocuments  = NewAppError("NO_READY_DOCUMENTS", "none of the requested documents are completed", ErrValidation)
	ErrInvalidTransition = NewAppError("INVALID_TRANSITION", "status transition not permitted", ErrValidation)
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// PersistenceError marks a medium load/save failure.
func PersistenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}

// ProcessingError is returned when a registered document fails extraction.
// It matches ErrProcessingFailed and the extractor's cause.
type ProcessingError struct {
	FileName   string
	DocumentID string
	Cause      error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("processing %q failed: %v", e.FileName, e.Cause)
}

func (e *ProcessingError) Unwrap() []error {
	return []error{ErrProcessingFailed, e.Cause}
}

// GenerationError is returned when a registered report fails generation.
type GenerationError struct {
	ReportID string
	Cause    error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generating report %s failed: %v", e.ReportID, e.Cause)
}

func (e *GenerationError) Unwrap() []error {
	return []error{ErrGenerationFailed, e.Cause}
}
