package domainerrors

import (
	"errors"
	"fmt"
)

// Code is a stable error code surfaced to the API layer
type Code string

const (
	CodeInsufficientFunds    Code = "insufficient_funds"
	CodeInvalidState         Code = "invalid_state"
	CodeNotFound             Code = "not_found"
	CodeValidation           Code = "validation_error"
	CodePartialCommitFailure Code = "partial_commit_failure"
)

// DomainError carries a stable code plus a user-facing message alongside the
// wrapped cause. Callers match with errors.As or the Is* helpers below.
type DomainError struct {
	Code        Code
	UserMessage string // message safe to show to the end user
	Err         error  // underlying cause, may be nil
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.UserMessage, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.UserMessage)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewInsufficientFunds creates an insufficient-funds error carrying the exact
// shortfall in cents so the UI can show the user how much to add.
func NewInsufficientFunds(shortfall int64) *DomainError {
	return &DomainError{
		Code:        CodeInsufficientFunds,
		UserMessage: fmt.Sprintf("insufficient balance: add at least $%d.%02d to continue", shortfall/100, shortfall%100),
	}
}

// NewInvalidState creates an error for operations on entities whose current
// state does not permit them
func NewInvalidState(message string) *DomainError {
	return &DomainError{Code: CodeInvalidState, UserMessage: message}
}

// NewNotFound creates an error for missing entities
func NewNotFound(entity string, id any) *DomainError {
	return &DomainError{
		Code:        CodeNotFound,
		UserMessage: fmt.Sprintf("%s %v not found", entity, id),
	}
}

// NewValidation creates an error for rejected input
func NewValidation(message string) *DomainError {
	return &DomainError{Code: CodeValidation, UserMessage: message}
}

// NewPartialCommit wraps a failure that may have left a multi-step mutation
// partially applied. These must be logged and alerted for reconciliation.
func NewPartialCommit(operation string, err error) *DomainError {
	return &DomainError{
		Code:        CodePartialCommitFailure,
		UserMessage: "the operation could not be completed; support has been notified",
		Err:         fmt.Errorf("partial commit in %s: %w", operation, err),
	}
}

// CodeOf extracts the error code, or empty string for non-domain errors
func CodeOf(err error) Code {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsInsufficientFunds checks for the insufficient-funds code
func IsInsufficientFunds(err error) bool { return CodeOf(err) == CodeInsufficientFunds }

// IsInvalidState checks for the invalid-state code
func IsInvalidState(err error) bool { return CodeOf(err) == CodeInvalidState }

// IsNotFound checks for the not-found code
func IsNotFound(err error) bool { return CodeOf(err) == CodeNotFound }

// IsValidation checks for the validation code
func IsValidation(err error) bool { return CodeOf(err) == CodeValidation }
