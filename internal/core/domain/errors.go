// Package domain defines the core domain values for sessgate.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain error with a structured error code.
// Codes have the form SG-<AREA>-<NNNN>; the last four digits follow the
// HTTP status the error maps to (4040 → 404, 5000 → 500).
type DomainError struct {
	Code    string // Error code (e.g., "SG-CONF-4001")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Configuration Errors (CONF)
// ============================================================================

var (
	// ErrProxyKeyMissing indicates a certificate was configured without a private key.
	ErrProxyKeyMissing = NewDomainError("SG-CONF-4001", "PROXY_KEY is not set while PROXY_CERT is")

	// ErrProxyCertMissing indicates a private key was configured without a certificate.
	ErrProxyCertMissing = NewDomainError("SG-CONF-4002", "PROXY_CERT is not set while PROXY_KEY is")

	// ErrInvalidConfig indicates a configuration value is out of range or malformed.
	ErrInvalidConfig = NewDomainError("SG-CONF-4003", "invalid configuration")
)

// ============================================================================
// Session Errors (SESS)
// ============================================================================

var (
	// ErrTokenGeneration indicates the random source failed while minting a token.
	ErrTokenGeneration = NewDomainError("SG-SESS-5000", "session token generation failed")
)

// ============================================================================
// File Errors (FILE)
// ============================================================================

var (
	// ErrArchiveNotFound indicates the requested archive does not exist.
	ErrArchiveNotFound = NewDomainError("SG-FILE-4040", "An archive with a model was not found")

	// ErrArchiveOutsideRoot indicates the requested path escapes the data root.
	ErrArchiveOutsideRoot = NewDomainError("SG-FILE-4041", "Not found.")

	// ErrArchiveCorrupted indicates the archive exists but cannot be read.
	ErrArchiveCorrupted = NewDomainError("SG-FILE-5000", "An archive with a model is corrupted")
)
