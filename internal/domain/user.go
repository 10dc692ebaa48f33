// Package domain contains the core business entities for Emblem.
// These are pure Go structs with no external dependencies, representing
// the fundamental concepts of the badge tracking system.
package domain

import (
	"time"
)

// User represents a registered account in the system.
// Users earn badges and accumulate certification progress.
type User struct {
	// ID is the unique identifier for the user (auto-generated).
	ID int64 `json:"user_id"`

	// Username is the unique username for login and display.
	// Immutable after registration.
	Username string `json:"username"`

	// Email is the unique email address for the user. Optional at
	// registration; nil means no email was provided.
	Email *string `json:"email,omitempty"`

	// PasswordHash is the bcrypt hash of the user's password.
	// This must never be exposed in API responses or logs.
	PasswordHash string `json:"-"`

	// FullName is the user's display name. Optional.
	FullName *string `json:"full_name,omitempty"`

	// ProfileBio is a free-form profile blurb. Optional.
	ProfileBio *string `json:"profile_bio,omitempty"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser creates a new User with the given credentials.
func NewUser(username string, email *string, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// ProfilePatch is a sparse set of profile mutations. A nil field means
// "leave unchanged"; a pointer to the empty string is a valid update
// that clears the stored value. Username and email have no update path.
type ProfilePatch struct {
	FullName   *string
	ProfileBio *string
}

// IsEmpty reports whether the patch touches no fields.
func (p ProfilePatch) IsEmpty() bool {
	return p.FullName == nil && p.ProfileBio == nil
}
