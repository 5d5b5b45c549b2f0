package errors

import (
	"errors"
	"fmt"
)

// Domain error types for the collection pipeline

var (
	// ErrInvalidInput indicates invalid input parameters
	ErrInvalidInput = errors.New("invalid input")

	// ErrInternal indicates an internal error
	ErrInternal = errors.New("internal error")

	// ErrTimeout indicates an operation timeout
	ErrTimeout = errors.New("operation timeout")

	// ErrUnavailable indicates an upstream service is unavailable
	ErrUnavailable = errors.New("service unavailable")
)

// Source-specific errors

var (
	// ErrRateLimited indicates the provider rejected a request with a rate limit
	ErrRateLimited = errors.New("rate limited by provider")

	// ErrMissingCredentials indicates required API credentials are absent
	ErrMissingCredentials = errors.New("missing API credentials")

	// ErrUnexpectedStatus indicates a non-success HTTP response from a provider
	ErrUnexpectedStatus = errors.New("unexpected response status")
)

// Price-lookup errors

var (
	// ErrNoPriceData indicates no trading data exists in the requested window
	ErrNoPriceData = errors.New("no price data in window")

	// ErrInvalidTicker indicates the market data source rejected the symbol
	ErrInvalidTicker = errors.New("invalid ticker symbol")
)

// CSV errors

var (
	// ErrMissingColumn indicates a named column is absent from a CSV header
	ErrMissingColumn = errors.New("column not found")

	// ErrEmptyFile indicates a CSV file contains no rows
	ErrEmptyFile = errors.New("empty csv file")
)

// DomainError wraps an error with additional context
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ValidationError represents a validation error with field-specific details
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// Helper functions

// Is checks if err is or wraps target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target type
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

func New(message string) error {
	return errors.New(message)
}

func Newf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
