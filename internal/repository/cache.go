package repository

import (
	"context"
	"strconv"
	"time"
)

// Cache defines the interface for caching operations.
// Primarily implemented using Redis for distributed caching, with an
// in-memory fallback for single-node deployments.
type Cache interface {
	// Get retrieves a value by key.
	// Returns ErrCacheMiss if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with an optional TTL.
	// If ttl is 0, the value doesn't expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key.
	Delete(ctx context.Context, key string) error

	// Exists checks if a key exists.
	Exists(ctx context.Context, key string) (bool, error)
}

// =============================================================================
// Common Cache Keys
// =============================================================================

// CacheKey generates cache keys for common scenarios.
type CacheKey struct{}

// BadgeList returns the cache key for the full badge catalog.
func (CacheKey) BadgeList() string {
	return "cache:badges:all"
}

// Badge returns the cache key for one badge's details.
func (CacheKey) Badge(id int64) string {
	return "cache:badge:" + strconv.FormatInt(id, 10)
}

// Profile returns the cache key for a user's assembled profile.
func (CacheKey) Profile(userID int64) string {
	return "cache:profile:" + strconv.FormatInt(userID, 10)
}
