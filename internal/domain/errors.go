// Package domain contains the core business entities for Emblem.
package domain

import (
	"errors"
	"fmt"
)

// Domain errors - these represent business rule violations.
// They are distinct from infrastructure errors (database, network, etc.).

var (
	// ===========================================
	// Account Errors
	// ===========================================

	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates a user with the same username or
	// email exists.
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrInvalidCredentials indicates authentication failed. The same
	// error covers unknown usernames and wrong passwords so responses
	// do not reveal which usernames exist.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrMissingField indicates a required request field was absent or
	// empty.
	ErrMissingField = errors.New("missing required field")

	// ErrNoUpdateFields indicates a profile update supplied no
	// recognized fields.
	ErrNoUpdateFields = errors.New("no update fields provided")

	// ===========================================
	// Badge Errors
	// ===========================================

	// ErrBadgeNotFound indicates the requested badge does not exist.
	ErrBadgeNotFound = errors.New("badge not found")

	// ErrBadgeAlreadyAwarded indicates the user already holds the badge.
	ErrBadgeAlreadyAwarded = errors.New("badge already awarded to user")

	// ErrAchievementNotFound indicates no achievement matches the
	// given share token.
	ErrAchievementNotFound = errors.New("achievement not found")

	// ===========================================
	// Certification Errors
	// ===========================================

	// ErrCertificationNotFound indicates the certification does not exist.
	ErrCertificationNotFound = errors.New("certification not found")

	// ErrInvalidCertStatus indicates an unknown progress status value.
	ErrInvalidCertStatus = errors.New("invalid certification status")

	// ===========================================
	// Infrastructure Errors
	// ===========================================

	// ErrStoreUnavailable indicates the backing store could not be
	// reached or a write failed transactionally. Callers may retry.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// DomainError wraps a domain error with additional context.
type DomainError struct {
	// Err is the underlying domain error.
	Err error

	// Message provides additional context.
	Message string

	// Resource identifies the affected resource (e.g., username, badge ID).
	Resource string
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Err.Error(), e.Message, e.Resource)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error for errors.Is/errors.As.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError with context.
func NewDomainError(err error, message, resource string) *DomainError {
	return &DomainError{
		Err:      err,
		Message:  message,
		Resource: resource,
	}
}
