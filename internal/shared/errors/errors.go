// Package errors provides application-level error types and utilities.
// It separates expected policy outcomes (not found, consent required) from
// configuration and infrastructure failures so callers can react by kind.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation_error"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeConflict   ErrorType = "conflict"
	ErrorTypeForbidden  ErrorType = "forbidden"
	ErrorTypeInternal   ErrorType = "internal_error"
	ErrorTypeBadRequest ErrorType = "bad_request"

	// ErrorTypeConsentRequired is a policy outcome, not a failure: the gated
	// channel has no current granted consent. Never bypassed by retry.
	ErrorTypeConsentRequired ErrorType = "consent_required"

	// ErrorTypeKeyNotConfigured means PII key material is missing. Fatal at
	// startup; the process must not serve PII-touching requests without it.
	ErrorTypeKeyNotConfigured ErrorType = "key_not_configured"

	// ErrorTypeDecryptionFailed means stored ciphertext could not be opened
	// (corruption or key mismatch). Surfaced, never defaulted to empty.
	ErrorTypeDecryptionFailed ErrorType = "decryption_failed"

	// ErrorTypeAuditWriteFailed means the audit entry for a mutation could not
	// be persisted. The mutation it documents is rolled back with it.
	ErrorTypeAuditWriteFailed ErrorType = "audit_write_failed"
)

// AppError represents an application error with additional context
type AppError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Code    int       `json:"code"`
	Details string    `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func newAppError(t ErrorType, code int, message string, details ...string) *AppError {
	detail := ""
	if len(details) > 0 {
		detail = details[0]
	}
	return &AppError{
		Type:    t,
		Message: message,
		Code:    code,
		Details: detail,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeValidation, http.StatusBadRequest, message, details...)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeNotFound, http.StatusNotFound, message, details...)
}

// NewConflictError creates a new conflict error
func NewConflictError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeConflict, http.StatusConflict, message, details...)
}

// NewForbiddenError creates a new forbidden error
func NewForbiddenError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeForbidden, http.StatusForbidden, message, details...)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeInternal, http.StatusInternalServerError, message, details...)
}

// NewBadRequestError creates a new bad request error
func NewBadRequestError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeBadRequest, http.StatusBadRequest, message, details...)
}

// NewConsentRequiredError creates the hard-block error returned by the consent
// gate when the channel has no current granted consent.
func NewConsentRequiredError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeConsentRequired, http.StatusForbidden, message, details...)
}

// NewKeyNotConfiguredError creates the startup error for missing key material.
func NewKeyNotConfiguredError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeKeyNotConfigured, http.StatusInternalServerError, message, details...)
}

// NewDecryptionFailedError creates the error for unreadable ciphertext.
func NewDecryptionFailedError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeDecryptionFailed, http.StatusInternalServerError, message, details...)
}

// NewAuditWriteFailedError creates the error for a failed audit append.
func NewAuditWriteFailedError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeAuditWriteFailed, http.StatusInternalServerError, message, details...)
}

// IsAppError checks if the error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from error
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

func isType(err error, t ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == t
}

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return isType(err, ErrorTypeNotFound)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return isType(err, ErrorTypeValidation)
}

// IsConflictError checks if the error is a conflict error
func IsConflictError(err error) bool {
	return isType(err, ErrorTypeConflict)
}

// IsConsentRequiredError checks if the error is a consent gate denial
func IsConsentRequiredError(err error) bool {
	return isType(err, ErrorTypeConsentRequired)
}

// IsDecryptionFailedError checks if the error is a failed decryption
func IsDecryptionFailedError(err error) bool {
	return isType(err, ErrorTypeDecryptionFailed)
}

// IsAuditWriteFailedError checks if the error is a failed audit append
func IsAuditWriteFailedError(err error) bool {
	return isType(err, ErrorTypeAuditWriteFailed)
}
