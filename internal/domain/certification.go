package domain

import "time"

// CertStatus is the state of a user's progress toward a certification.
type CertStatus string

const (
	// CertInProgress means the user has started but not completed the
	// certification.
	CertInProgress CertStatus = "in_progress"

	// CertCompleted means all required badges have been earned.
	CertCompleted CertStatus = "completed"
)

// Valid reports whether the status is a known value.
func (s CertStatus) Valid() bool {
	return s == CertInProgress || s == CertCompleted
}

// Certification is a credential composed of multiple badges.
type Certification struct {
	// ID is the unique identifier for the certification (auto-generated).
	ID int64 `json:"cert_id"`

	// Name is the display name of the certification.
	Name string `json:"cert_name"`

	// Description explains what the certification covers.
	Description string `json:"description"`

	// RequiredBadges is the number of badges needed to complete it.
	RequiredBadges int `json:"required_badges"`

	// CreatedAt is the timestamp when the certification was created.
	CreatedAt time.Time `json:"created_at"`
}

// CertProgress is a user's progress row for one certification.
type CertProgress struct {
	Certification

	// Status is the user's current state for this certification.
	Status CertStatus `json:"status"`

	// CompletionDate is set once Status becomes completed.
	CompletionDate *time.Time `json:"completion_date,omitempty"`
}

// Profile aggregates everything shown on a user's profile page.
type Profile struct {
	User           *User           `json:"user"`
	Badges         []*EarnedBadge  `json:"badges"`
	Certifications []*CertProgress `json:"certifications"`
}
