// Package repository defines data access interfaces for Emblem.
// These interfaces abstract database operations, allowing for different
// implementations (PostgreSQL, SQLite, in-memory for testing) while
// keeping the service layer clean.
package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/halcyon-labs/emblem/internal/domain"
)

// =============================================================================
// User Repository
// =============================================================================

// UserRepository defines the interface for user data access.
type UserRepository interface {
	// Create creates a new user. A unique-constraint violation on
	// username or email is reported as domain.ErrUserAlreadyExists;
	// the database constraint is the authoritative conflict check.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByUsername retrieves a user by username.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// ExistsByUsernameOrEmail checks whether any user holds the given
	// username or (non-nil) email. Used as the registration pre-check.
	ExistsByUsernameOrEmail(ctx context.Context, username string, email *string) (bool, error)

	// UpdateProfile applies a sparse profile patch to one user in a
	// single atomic statement. Fields absent from the patch retain
	// their stored values. Returns domain.ErrUserNotFound if the user
	// does not exist; an update that changes nothing is a success.
	UpdateProfile(ctx context.Context, id int64, patch domain.ProfilePatch) error

	// List returns all users with pagination.
	List(ctx context.Context, opts ListOptions) (*ListResult[domain.User], error)
}

// =============================================================================
// Badge Repository
// =============================================================================

// BadgeRepository defines the interface for badge catalog access.
type BadgeRepository interface {
	// Create creates a new badge.
	Create(ctx context.Context, badge *domain.Badge) error

	// GetByID retrieves a badge by ID.
	GetByID(ctx context.Context, id int64) (*domain.Badge, error)

	// List returns the whole badge catalog.
	List(ctx context.Context) ([]*domain.Badge, error)

	// UpdateIconURL sets the icon URL for a badge.
	UpdateIconURL(ctx context.Context, id int64, iconURL string) error
}

// =============================================================================
// Achievement Repository
// =============================================================================

// AchievementRepository defines the interface for awarded-badge access.
type AchievementRepository interface {
	// Create awards a badge to a user. Awarding the same badge twice
	// is reported as domain.ErrBadgeAlreadyAwarded.
	Create(ctx context.Context, a *domain.Achievement) error

	// ListByUser returns badges earned by a user, joined with badge
	// details, newest first.
	ListByUser(ctx context.Context, userID int64) ([]*domain.EarnedBadge, error)

	// GetByShareToken resolves a public share token to the earned
	// badge it references.
	GetByShareToken(ctx context.Context, token uuid.UUID) (*domain.EarnedBadge, error)
}

// =============================================================================
// Certification Repository
// =============================================================================

// CertificationRepository defines the interface for certification access.
type CertificationRepository interface {
	// Create creates a new certification.
	Create(ctx context.Context, cert *domain.Certification) error

	// GetByID retrieves a certification by ID.
	GetByID(ctx context.Context, id int64) (*domain.Certification, error)

	// List returns all certifications.
	List(ctx context.Context) ([]*domain.Certification, error)

	// ListProgressByUser returns a user's progress rows joined with
	// certification details.
	ListProgressByUser(ctx context.Context, userID int64) ([]*domain.CertProgress, error)

	// UpsertProgress creates or updates a user's progress for one
	// certification in a single atomic statement.
	UpsertProgress(ctx context.Context, userID, certID int64, status domain.CertStatus) error
}

// =============================================================================
// Common Types
// =============================================================================

// ListOptions contains common pagination options.
type ListOptions struct {
	// Offset is the number of records to skip.
	Offset int

	// Limit is the maximum number of records to return.
	Limit int
}

// ListResult is a generic paginated list result.
type ListResult[T any] struct {
	// Items is the list of items.
	Items []*T

	// Total is the total number of items (without pagination).
	Total int64

	// Offset is the current offset.
	Offset int

	// Limit is the current limit.
	Limit int
}
