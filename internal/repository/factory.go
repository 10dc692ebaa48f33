package repository

import (
	"context"
)

// Repositories holds all repository instances.
type Repositories struct {
	User          UserRepository
	Badge         BadgeRepository
	Achievement   AchievementRepository
	Certification CertificationRepository
}

// DatabaseHealth is an interface for database health checks.
// Satisfied by both driver DB wrappers; consumed by the health endpoint.
type DatabaseHealth interface {
	Ping(ctx context.Context) error
	Close() error
}
