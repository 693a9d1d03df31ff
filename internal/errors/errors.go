package errors

import (
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeInput      ErrorType = "INPUT"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeMatching   ErrorType = "MATCHING"
	ErrTypeScoring    ErrorType = "SCORING"
	ErrTypeAgeGrading ErrorType = "AGE_GRADING"
	ErrTypeExport     ErrorType = "EXPORT"
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// Helper functions for common error types

// NewInputError creates an error for structurally invalid source data.
// Input errors abort the whole run: they indicate corrupt exports, not
// something the pipeline can paper over.
func NewInputError(message string, cause error) *AppError {
	return NewAppError(ErrTypeInput, message, cause)
}

// NewValidationError creates a record-validation error
func NewValidationError(message string, cause error) *AppError {
	return NewAppError(ErrTypeValidation, message, cause)
}

// NewMatchingError creates a matching-related error
func NewMatchingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeMatching, message, cause)
}

// NewScoringError creates a scoring-related error
func NewScoringError(message string, cause error) *AppError {
	return NewAppError(ErrTypeScoring, message, cause)
}

// NewAgeGradingError creates an age-grading error
func NewAgeGradingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeAgeGrading, message, cause)
}

// NewExportError creates an export-related error
func NewExportError(message string, cause error) *AppError {
	return NewAppError(ErrTypeExport, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// DuplicateMemberIDError reports a roster containing the same member
// identifier more than once.
func DuplicateMemberIDError(memberID string) *AppError {
	return NewInputError(fmt.Sprintf("duplicate member ID %q", memberID), nil)
}

// DuplicatePlaceError reports a race file containing the same finishing
// place more than once.
func DuplicatePlaceError(place int, file string) *AppError {
	return NewInputError(fmt.Sprintf("duplicate finishing place %d", place), nil).
		WithContext("file", file)
}

// DuplicateMatchError reports two finishers resolving to the same member
// with high confidence within one race. A member cannot finish twice, so
// this is surfaced rather than silently resolved.
func DuplicateMatchError(memberID, race string) *AppError {
	return NewMatchingError(
		fmt.Sprintf("member %q matched more than once in race %q", memberID, race), nil)
}

// UnknownCategoryError reports a requested category name that the scoring
// engine does not produce.
func UnknownCategoryError(name string) *AppError {
	return NewScoringError(fmt.Sprintf("unknown category %q", name), nil)
}

// UnknownTableYearError reports a request for an age-grading factor table
// year that is not available. The calculator fails closed instead of
// defaulting to a different year.
func UnknownTableYearError(year int) *AppError {
	return NewAgeGradingError(fmt.Sprintf("no age-grading factor table for year %d", year), nil)
}
