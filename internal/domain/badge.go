package domain

import (
	"time"

	"github.com/google/uuid"
)

// Badge represents an awardable badge in the catalog.
type Badge struct {
	// ID is the unique identifier for the badge (auto-generated).
	ID int64 `json:"badge_id"`

	// Name is the display name of the badge.
	Name string `json:"badge_name"`

	// Description explains what the badge represents.
	Description string `json:"description"`

	// IconURL points at the badge artwork. May be empty until an icon
	// is uploaded.
	IconURL string `json:"icon_url"`

	// Criteria describes what must be done to earn the badge.
	Criteria string `json:"criteria,omitempty"`

	// CreatedAt is the timestamp when the badge was created.
	CreatedAt time.Time `json:"created_at"`
}

// Achievement is a badge earned by a specific user.
type Achievement struct {
	// ID is the unique identifier of the award row.
	ID int64 `json:"id"`

	// UserID is the user who earned the badge.
	UserID int64 `json:"user_id"`

	// BadgeID is the badge that was earned.
	BadgeID int64 `json:"badge_id"`

	// EarnedAt is when the badge was awarded.
	EarnedAt time.Time `json:"earned_date"`

	// ShareToken is an unguessable token for public share links.
	ShareToken uuid.UUID `json:"share_token"`
}

// NewAchievement awards a badge to a user, minting a fresh share token.
func NewAchievement(userID, badgeID int64) *Achievement {
	return &Achievement{
		UserID:     userID,
		BadgeID:    badgeID,
		EarnedAt:   time.Now().UTC(),
		ShareToken: uuid.New(),
	}
}

// EarnedBadge is a badge joined with its award metadata, as surfaced on
// a user's profile.
type EarnedBadge struct {
	Badge
	EarnedAt   time.Time `json:"earned_date"`
	ShareToken uuid.UUID `json:"share_token"`
}
