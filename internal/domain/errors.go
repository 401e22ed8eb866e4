package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeValidation   ErrorCode = "VALIDATION_ERROR"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeConflict     ErrorCode = "CONFLICT"

	// Vocabulary and quiz errors
	CodeVocabularyNotFound     ErrorCode = "VOCABULARY_NOT_FOUND"
	CodeInsufficientVocabulary ErrorCode = "INSUFFICIENT_VOCABULARY"

	// External collaborators
	CodeCacheError       ErrorCode = "CACHE_ERROR"
	CodeLLMServiceError  ErrorCode = "LLM_SERVICE_ERROR"
	CodeIdentityProvider ErrorCode = "IDENTITY_PROVIDER_ERROR"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Err     error                  `json:"-"`
	Context map[string]interface{} `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the cause to errors.Is / errors.As.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// WithContext attaches a detail to the error and returns it.
func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Helper functions for common errors
func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(CodeInternal, message, err)
}

func NewUnauthorizedError(message string) *DomainError {
	return NewError(CodeUnauthorized, message, nil)
}

func NewConflictError(message string) *DomainError {
	return NewError(CodeConflict, message, nil)
}

func NewVocabularyNotFoundError(id string) *DomainError {
	return NewError(CodeVocabularyNotFound, fmt.Sprintf("Vocabulary item not found with ID: %s", id), nil)
}

func NewCacheError(message string, err error) *DomainError {
	return NewError(CodeCacheError, message, err)
}

func NewLLMServiceError(err error) *DomainError {
	return NewError(CodeLLMServiceError, "Failed to process with LLM service", err)
}

func NewIdentityProviderError(message string, err error) *DomainError {
	return NewError(CodeIdentityProvider, message, err)
}

// ErrAlreadyExists is returned by repositories when a unique constraint rejects a write.
var ErrAlreadyExists = errors.New("already exists")

// ErrInsufficientVocabulary is the sentinel wrapped by NewInsufficientVocabularyError.
var ErrInsufficientVocabulary = errors.New("insufficient vocabulary")

// NewInsufficientVocabularyError reports that fewer than minimum eligible items were available.
func NewInsufficientVocabularyError(available, minimum int) *DomainError {
	return NewError(
		CodeInsufficientVocabulary,
		fmt.Sprintf("At least %d vocabulary items with a meaning are required to generate a quiz, found %d", minimum, available),
		ErrInsufficientVocabulary,
	).WithContext("available", available).WithContext("minimum", minimum)
}

// IsCode reports whether err is a DomainError with the given code.
func IsCode(err error, code ErrorCode) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}

// ValidationError describes a single invalid field.
type ValidationError struct {
	Field   string    `json:"field"`
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// Field error codes
const (
	CodeMissingField  ErrorCode = "MISSING_FIELD"
	CodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	CodeOutOfRange    ErrorCode = "OUT_OF_RANGE"
)

func NewMissingFieldError(field string) ValidationError {
	return ValidationError{Field: field, Code: CodeMissingField, Message: fmt.Sprintf("%s is required", field)}
}

func NewInvalidFormatError(field, value string) ValidationError {
	return ValidationError{Field: field, Code: CodeInvalidFormat, Message: fmt.Sprintf("%s has an invalid format: %q", field, value)}
}

func NewOutOfRangeError(field string, value, min, max int) ValidationError {
	return ValidationError{Field: field, Code: CodeOutOfRange, Message: fmt.Sprintf("%s must be between %d and %d, got %d", field, min, max, value)}
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects field errors for one request.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}
	msg := "validation failed: " + v[0].Error()
	if len(v) > 1 {
		msg += fmt.Sprintf(" (and %d more)", len(v)-1)
	}
	return msg
}

// Add appends a field error with the generic validation code.
func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, ValidationError{Field: field, Code: CodeValidation, Message: message})
}

// OrNil returns nil when no field errors were collected.
func (v ValidationErrors) OrNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}
