package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/halcyon-labs/emblem/internal/domain"
	"github.com/halcyon-labs/emblem/internal/repository"
)

const profileCacheTTL = 30 * time.Second

// ProfileService assembles the public profile view: the user record
// plus earned badges and certification progress.
type ProfileService struct {
	userRepo        repository.UserRepository
	achievementRepo repository.AchievementRepository
	certRepo        repository.CertificationRepository
	cache           repository.Cache
	keys            repository.CacheKey
	logger          zerolog.Logger
}

// NewProfileService creates a new ProfileService.
func NewProfileService(
	userRepo repository.UserRepository,
	achievementRepo repository.AchievementRepository,
	certRepo repository.CertificationRepository,
	cache repository.Cache,
	logger zerolog.Logger,
) *ProfileService {
	return &ProfileService{
		userRepo:        userRepo,
		achievementRepo: achievementRepo,
		certRepo:        certRepo,
		cache:           cache,
		logger:          logger.With().Str("service", "profile").Logger(),
	}
}

// Get returns a user's profile with their earned badges and
// certification progress.
func (s *ProfileService) Get(ctx context.Context, userID int64) (*domain.Profile, error) {
	key := s.keys.Profile(userID)
	if data, err := s.cache.Get(ctx, key); err == nil {
		profile := &domain.Profile{}
		if err := json.Unmarshal(data, profile); err == nil {
			return profile, nil
		}
		_ = s.cache.Delete(ctx, key)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to load user")
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	badges, err := s.achievementRepo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to load earned badges")
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	certs, err := s.certRepo.ListProgressByUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to load certification progress")
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	profile := &domain.Profile{
		User:           user,
		Badges:         badges,
		Certifications: certs,
	}

	if data, err := json.Marshal(profile); err == nil {
		if err := s.cache.Set(ctx, key, data, profileCacheTTL); err != nil {
			s.logger.Warn().Err(err).Msg("failed to cache profile")
		}
	}

	return profile, nil
}

// Invalidate drops the cached profile after a mutation.
func (s *ProfileService) Invalidate(ctx context.Context, userID int64) {
	if err := s.cache.Delete(ctx, s.keys.Profile(userID)); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", userID).Msg("failed to invalidate profile cache")
	}
}
