// Package errors defines the application error types used across the
// reconciliation service.
//
// Errors carry a category and code for programmatic handling, an optional
// suggestion shown to CLI users, and a stack trace captured at creation
// time. The matching engine itself never produces these errors: malformed
// field values degrade silently per the reconciliation policy, so the
// types here cover the boundaries around the engine (input validation,
// ledger loading, the extraction service call, configuration).
package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorCategory groups errors by the subsystem that produced them.
type ErrorCategory string

const (
	CategoryValidation     ErrorCategory = "validation"
	CategoryLedger         ErrorCategory = "ledger"
	CategoryExtraction     ErrorCategory = "extraction"
	CategoryReconciliation ErrorCategory = "reconciliation"
	CategoryConfiguration  ErrorCategory = "configuration"
	CategoryFile           ErrorCategory = "file"
)

// ErrorCode identifies a specific failure within a category.
type ErrorCode string

const (
	// Validation errors
	CodeInvalidInvoice   ErrorCode = "invalid_invoice"
	CodeInvalidPORecords ErrorCode = "invalid_po_records"
	CodeMissingField     ErrorCode = "missing_field"

	// Ledger errors
	CodeLedgerFormat    ErrorCode = "ledger_format"
	CodeMissingColumn   ErrorCode = "missing_column"
	CodeEmptyLedger     ErrorCode = "empty_ledger"
	CodeUnsupportedFile ErrorCode = "unsupported_file"

	// Extraction errors
	CodeExtractionRequest  ErrorCode = "extraction_request"
	CodeExtractionResponse ErrorCode = "extraction_response"

	// Reconciliation errors
	CodeProcessingError ErrorCode = "processing_error"

	// Configuration errors
	CodeInvalidConfig ErrorCode = "invalid_config"

	// File errors
	CodeFileNotFound ErrorCode = "file_not_found"
	CodeFileRead     ErrorCode = "file_read"
)

// ReconcilerError is the base error type for all application errors.
type ReconcilerError struct {
	Category   ErrorCategory     `json:"category"`
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Context carries additional structured information about the error.
type Context map[string]interface{}

// Error implements the error interface.
func (e *ReconcilerError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error.
func (e *ReconcilerError) Unwrap() error {
	return e.Cause
}

// GetExitCode maps the error category to a CLI exit code.
func (e *ReconcilerError) GetExitCode() int {
	switch e.Category {
	case CategoryFile:
		return 2
	case CategoryValidation, CategoryLedger:
		return 3
	case CategoryConfiguration:
		return 4
	case CategoryReconciliation:
		return 5
	case CategoryExtraction:
		return 6
	default:
		return 1
	}
}

// WithContext adds a key/value pair to the error context.
func (e *ReconcilerError) WithContext(key string, value interface{}) *ReconcilerError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion attaches a remediation hint for CLI presentation.
func (e *ReconcilerError) WithSuggestion(suggestion string) *ReconcilerError {
	e.Suggestion = suggestion
	return e
}

// New creates a new ReconcilerError with a captured stack trace.
func New(category ErrorCategory, code ErrorCode, message string) *ReconcilerError {
	return &ReconcilerError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with category and code context.
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *ReconcilerError {
	if err == nil {
		return nil
	}

	return &ReconcilerError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// ValidationError creates an input-validation error.
func ValidationError(code ErrorCode, message string) *ReconcilerError {
	return New(CategoryValidation, code, message).
		WithSuggestion("correct the input data and resubmit the document")
}

// LedgerError creates a purchase-order ledger error.
func LedgerError(code ErrorCode, message string, cause error) *ReconcilerError {
	var result *ReconcilerError
	if cause != nil {
		result = Wrap(cause, CategoryLedger, code, message)
	} else {
		result = New(CategoryLedger, code, message)
	}
	return result.WithSuggestion("check the ledger file columns and row values")
}

// ExtractionError creates an extraction-service error.
func ExtractionError(code ErrorCode, message string, cause error) *ReconcilerError {
	var result *ReconcilerError
	if cause != nil {
		result = Wrap(cause, CategoryExtraction, code, message)
	} else {
		result = New(CategoryExtraction, code, message)
	}
	return result.WithSuggestion("verify the extraction endpoint and API key")
}

// ConfigError creates a configuration error.
func ConfigError(message string, cause error) *ReconcilerError {
	if cause != nil {
		return Wrap(cause, CategoryConfiguration, CodeInvalidConfig, message)
	}
	return New(CategoryConfiguration, CodeInvalidConfig, message)
}

// FileError creates a file access error.
func FileError(code ErrorCode, path string, cause error) *ReconcilerError {
	message := fmt.Sprintf("file error: %s", path)
	switch code {
	case CodeFileNotFound:
		message = fmt.Sprintf("file not found: %s", path)
	case CodeFileRead:
		message = fmt.Sprintf("failed to read file: %s", path)
	}

	var result *ReconcilerError
	if cause != nil {
		result = Wrap(cause, CategoryFile, code, message)
	} else {
		result = New(CategoryFile, code, message)
	}
	return result.WithContext("file_path", path)
}

// GetCategory returns the category of an error, or CategoryReconciliation
// for errors that are not ReconcilerErrors.
func GetCategory(err error) ErrorCategory {
	var re *ReconcilerError
	if errors.As(err, &re) {
		return re.Category
	}
	return CategoryReconciliation
}

// IsCategory reports whether the error belongs to the given category.
func IsCategory(err error, category ErrorCategory) bool {
	return GetCategory(err) == category
}

// GetExitCode returns the exit code for any error.
func GetExitCode(err error) int {
	var re *ReconcilerError
	if errors.As(err, &re) {
		return re.GetExitCode()
	}
	return 1
}
