// Package errors defines stable error codes for patchmatch failure modes.
// Core degradations (malformed patches, ambiguous strip levels) are never
// raised as errors at all; they surface as status fields on the affected
// patch or comparison result. The codes here cover the plumbing around
// the core: collection, storage, the distro registry.
package errors

import (
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// PatchDirMissing indicates the patch directory for a package was not found
	PatchDirMissing ErrorCode = "PATCH_DIR_MISSING"
	// StoreUnavailable indicates the results database could not be opened
	StoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
	// RegistryInvalid indicates a broken distros.toml registry
	RegistryInvalid ErrorCode = "REGISTRY_INVALID"
	// InternalError indicates an unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// MatchError represents a patchmatch error with a stable code and message
type MatchError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error       // Underlying error (not exported to JSON)
}

// New creates a new MatchError
func New(code ErrorCode, message string, cause error) *MatchError {
	return &MatchError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Error implements the error interface
func (e *MatchError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *MatchError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *MatchError) WithDetails(details interface{}) *MatchError {
	e.Details = details
	return e
}

// CodeOf extracts the ErrorCode from an error, or InternalError if it
// is not a MatchError.
func CodeOf(err error) ErrorCode {
	if me, ok := err.(*MatchError); ok {
		return me.Code
	}
	return InternalError
}
