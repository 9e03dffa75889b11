package domain

import (
	"errors"
	"fmt"
)

// DomainError represents errors in the domain layer
type DomainError struct {
	Code    string
	Message string
	Cause   error
}

func (e DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e DomainError) Unwrap() error {
	return e.Cause
}

// Domain error codes
const (
	ErrCodeValidation        = "VALIDATION"
	ErrCodeRange             = "RANGE"
	ErrCodeState             = "STATE"
	ErrCodeResource          = "RESOURCE"
	ErrCodeMissingColumn     = "MISSING_COLUMN"
	ErrCodeFileNotFound      = "FILE_NOT_FOUND"
	ErrCodeLoadError         = "LOAD_ERROR"
	ErrCodeConfigError       = "CONFIG_ERROR"
	ErrCodeOutputError       = "OUTPUT_ERROR"
	ErrCodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
)

// NewDomainError creates a new domain error
func NewDomainError(code, message string, cause error) error {
	return DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewValidationError creates a validation error for wrongly shaped or
// unrecognized arguments.
func NewValidationError(message string) error {
	return NewDomainError(ErrCodeValidation, message, nil)
}

// NewRangeError creates an error for inverted or structurally invalid ranges.
func NewRangeError(message string) error {
	return NewDomainError(ErrCodeRange, message, nil)
}

// NewStateError creates an error for operations invoked out of sequence,
// e.g. before data is loaded or without a preceding result.
func NewStateError(message string) error {
	return NewDomainError(ErrCodeState, message, nil)
}

// NewResourceError creates an error for output targets that are locked or
// otherwise unwritable.
func NewResourceError(message string, cause error) error {
	return NewDomainError(ErrCodeResource, message, cause)
}

// NewMissingColumnError creates an error for a grouping column that is not
// present in a result.
func NewMissingColumnError(column string) error {
	return NewDomainError(ErrCodeMissingColumn, fmt.Sprintf("column %q is not present in the result; request metadata columns first", column), nil)
}

// NewFileNotFoundError creates a file not found error
func NewFileNotFoundError(path string, cause error) error {
	return NewDomainError(ErrCodeFileNotFound, fmt.Sprintf("file not found: %s", path), cause)
}

// NewLoadError creates a data loading error
func NewLoadError(message string, cause error) error {
	return NewDomainError(ErrCodeLoadError, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) error {
	return NewDomainError(ErrCodeConfigError, message, cause)
}

// NewOutputError creates an output error
func NewOutputError(message string, cause error) error {
	return NewDomainError(ErrCodeOutputError, message, cause)
}

// NewUnsupportedFormatError creates an unsupported format error
func NewUnsupportedFormatError(format string) error {
	return NewDomainError(ErrCodeUnsupportedFormat, fmt.Sprintf("unsupported format: %s", format), nil)
}

// ErrorCode returns the code of the first DomainError in err's chain, or ""
func ErrorCode(err error) string {
	var de DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// HasCode reports whether err carries the given domain error code
func HasCode(err error, code string) bool {
	return ErrorCode(err) == code
}

// IsSoft reports whether err is a workflow error that should be reported
// to the user as a notice rather than fail the caller.
func IsSoft(err error) bool {
	switch ErrorCode(err) {
	case ErrCodeState, ErrCodeResource:
		return true
	default:
		return false
	}
}
