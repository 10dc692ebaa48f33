package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/halcyon-labs/emblem/internal/domain"
	"github.com/halcyon-labs/emblem/internal/repository"
	"github.com/halcyon-labs/emblem/internal/storage"
)

// badgeCacheTTL bounds how stale the badge catalog may be served.
const badgeCacheTTL = 5 * time.Minute

// BadgeService handles the badge catalog, awards, and share links.
type BadgeService struct {
	badgeRepo       repository.BadgeRepository
	achievementRepo repository.AchievementRepository
	cache           repository.Cache
	icons           storage.IconStore
	keys            repository.CacheKey
	logger          zerolog.Logger
}

// NewBadgeService creates a new BadgeService.
func NewBadgeService(
	badgeRepo repository.BadgeRepository,
	achievementRepo repository.AchievementRepository,
	cache repository.Cache,
	icons storage.IconStore,
	logger zerolog.Logger,
) *BadgeService {
	return &BadgeService{
		badgeRepo:       badgeRepo,
		achievementRepo: achievementRepo,
		cache:           cache,
		icons:           icons,
		logger:          logger.With().Str("service", "badge").Logger(),
	}
}

// List returns the full badge catalog, served from cache when possible.
func (s *BadgeService) List(ctx context.Context) ([]*domain.Badge, error) {
	if data, err := s.cache.Get(ctx, s.keys.BadgeList()); err == nil {
		var badges []*domain.Badge
		if err := json.Unmarshal(data, &badges); err == nil {
			return badges, nil
		}
		// Corrupt cache entry; fall through to the store.
		_ = s.cache.Delete(ctx, s.keys.BadgeList())
	}

	badges, err := s.badgeRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list badges")
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	if data, err := json.Marshal(badges); err == nil {
		if err := s.cache.Set(ctx, s.keys.BadgeList(), data, badgeCacheTTL); err != nil {
			s.logger.Warn().Err(err).Msg("failed to cache badge list")
		}
	}

	return badges, nil
}

// Get returns one badge's details, served from cache when possible.
func (s *BadgeService) Get(ctx context.Context, id int64) (*domain.Badge, error) {
	key := s.keys.Badge(id)
	if data, err := s.cache.Get(ctx, key); err == nil {
		badge := &domain.Badge{}
		if err := json.Unmarshal(data, badge); err == nil {
			return badge, nil
		}
		_ = s.cache.Delete(ctx, key)
	}

	badge, err := s.badgeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrBadgeNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Int64("badge_id", id).Msg("failed to get badge")
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	if data, err := json.Marshal(badge); err == nil {
		if err := s.cache.Set(ctx, key, data, badgeCacheTTL); err != nil {
			s.logger.Warn().Err(err).Msg("failed to cache badge")
		}
	}

	return badge, nil
}

// CreateBadgeInput contains the data needed to create a badge.
type CreateBadgeInput struct {
	Name        string
	Description string
	Criteria    string
}

// Create adds a badge to the catalog and invalidates the list cache.
func (s *BadgeService) Create(ctx context.Context, input CreateBadgeInput) (*domain.Badge, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: badge name is required", domain.ErrMissingField)
	}

	badge := &domain.Badge{
		Name:        input.Name,
		Description: input.Description,
		Criteria:    input.Criteria,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.badgeRepo.Create(ctx, badge); err != nil {
		s.logger.Error().Err(err).Str("name", input.Name).Msg("failed to create badge")
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	s.invalidateBadge(ctx, badge.ID)
	s.logger.Info().Int64("badge_id", badge.ID).Str("name", badge.Name).Msg("badge created")
	return badge, nil
}

// SetIcon stores badge artwork in the icon store and records its public
// URL on the badge row.
func (s *BadgeService) SetIcon(ctx context.Context, badgeID int64, filename, contentType string, content io.Reader) (string, error) {
	if _, err := s.badgeRepo.GetByID(ctx, badgeID); err != nil {
		if errors.Is(err, domain.ErrBadgeNotFound) {
			return "", domain.NewDomainError(domain.ErrBadgeNotFound, "cannot set icon", strconv.FormatInt(badgeID, 10))
		}
		return "", fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	iconURL, err := s.icons.Put(ctx, fmt.Sprintf("badge-%d-%s", badgeID, filename), contentType, content)
	if err != nil {
		s.logger.Error().Err(err).Int64("badge_id", badgeID).Msg("failed to store badge icon")
		return "", fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	if err := s.badgeRepo.UpdateIconURL(ctx, badgeID, iconURL); err != nil {
		if errors.Is(err, domain.ErrBadgeNotFound) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	s.invalidateBadge(ctx, badgeID)
	s.logger.Info().Int64("badge_id", badgeID).Str("icon_url", iconURL).Msg("badge icon updated")
	return iconURL, nil
}

// Award grants a badge to a user, minting the share token.
func (s *BadgeService) Award(ctx context.Context, userID, badgeID int64) (*domain.Achievement, error) {
	if _, err := s.badgeRepo.GetByID(ctx, badgeID); err != nil {
		if errors.Is(err, domain.ErrBadgeNotFound) {
			return nil, domain.NewDomainError(domain.ErrBadgeNotFound, "cannot award", strconv.FormatInt(badgeID, 10))
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	achievement := domain.NewAchievement(userID, badgeID)
	if err := s.achievementRepo.Create(ctx, achievement); err != nil {
		if errors.Is(err, domain.ErrBadgeAlreadyAwarded) || errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Int64("user_id", userID).Int64("badge_id", badgeID).Msg("failed to award badge")
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	s.logger.Info().
		Int64("user_id", userID).
		Int64("badge_id", badgeID).
		Str("share_token", achievement.ShareToken.String()).
		Msg("badge awarded")

	return achievement, nil
}

// GetShared resolves a share token to the earned badge it references.
// This backs public achievement share links.
func (s *BadgeService) GetShared(ctx context.Context, token uuid.UUID) (*domain.EarnedBadge, error) {
	earned, err := s.achievementRepo.GetByShareToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrAchievementNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Msg("failed to resolve share token")
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return earned, nil
}

// invalidateBadge drops cache entries affected by a badge mutation.
func (s *BadgeService) invalidateBadge(ctx context.Context, badgeID int64) {
	if err := s.cache.Delete(ctx, s.keys.BadgeList()); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate badge list cache")
	}
	if err := s.cache.Delete(ctx, s.keys.Badge(badgeID)); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate badge cache")
	}
}
