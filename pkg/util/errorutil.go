package util

import (
	"errors"
	"fmt"
)

// Error codes for the client-side error taxonomy.
const (
	CodeValidation   = "VALIDATION_FAILED"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeTransport    = "TRANSPORT_ERROR"
	CodeServer       = "SERVER_ERROR"
	CodeDecode       = "DECODE_ERROR"
	CodeConflict     = "CONFLICT"
	CodeNotFound     = "NOT_FOUND"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

func NewValidationError(message string) error {
	return NewDomainError(CodeValidation, message)
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message)
}

func NewTransportError(err error) error {
	return &DomainError{Code: CodeTransport, Message: "request failed", Err: err}
}

func NewServerError(status int, message string) error {
	if message == "" {
		message = fmt.Sprintf("server error: %d", status)
	}
	return NewDomainError(CodeServer, message)
}

func NewDecodeError(err error) error {
	return &DomainError{Code: CodeDecode, Message: "malformed response", Err: err}
}

func NewConflict(message string) error {
	return NewDomainError(CodeConflict, message)
}

func NewNotFound(resource string) error {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{Code: CodeTransport, Message: "request failed", Err: err}
}

// Reason renders the best available human-readable reason for an error.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	if de := ToDomainError(err); de != nil {
		if de.Err != nil {
			return fmt.Sprintf("%s: %v", de.Message, de.Err)
		}
		return de.Message
	}
	return err.Error()
}
