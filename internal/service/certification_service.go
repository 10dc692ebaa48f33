package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/halcyon-labs/emblem/internal/domain"
	"github.com/halcyon-labs/emblem/internal/repository"
)

// CertificationService manages certification tracks and per-user progress.
type CertificationService struct {
	certRepo repository.CertificationRepository
	userRepo repository.UserRepository
	logger   zerolog.Logger
}

// NewCertificationService creates a new CertificationService.
func NewCertificationService(
	certRepo repository.CertificationRepository,
	userRepo repository.UserRepository,
	logger zerolog.Logger,
) *CertificationService {
	return &CertificationService{
		certRepo: certRepo,
		userRepo: userRepo,
		logger:   logger.With().Str("service", "certification").Logger(),
	}
}

// CreateCertificationInput contains the data needed to create a
// certification track.
type CreateCertificationInput struct {
	Name           string
	Description    string
	RequiredBadges int
}

// Create adds a certification track.
func (s *CertificationService) Create(ctx context.Context, input CreateCertificationInput) (*domain.Certification, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: certification name is required", domain.ErrMissingField)
	}

	cert := &domain.Certification{
		Name:           input.Name,
		Description:    input.Description,
		RequiredBadges: input.RequiredBadges,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.certRepo.Create(ctx, cert); err != nil {
		s.logger.Error().Err(err).Str("name", input.Name).Msg("failed to create certification")
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	s.logger.Info().Int64("cert_id", cert.ID).Str("name", cert.Name).Msg("certification created")
	return cert, nil
}

// List returns all certification tracks.
func (s *CertificationService) List(ctx context.Context) ([]*domain.Certification, error) {
	certs, err := s.certRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list certifications")
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return certs, nil
}

// SetProgress records a user's standing on a certification track. A
// completed status stamps the completion date; moving back to
// in_progress clears it.
func (s *CertificationService) SetProgress(ctx context.Context, userID, certID int64, status domain.CertStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidCertStatus, status)
	}

	if _, err := s.certRepo.GetByID(ctx, certID); err != nil {
		if errors.Is(err, domain.ErrCertificationNotFound) {
			return domain.NewDomainError(domain.ErrCertificationNotFound, "cannot set progress", strconv.FormatInt(certID, 10))
		}
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	if err := s.certRepo.UpsertProgress(ctx, userID, certID, status); err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Int64("cert_id", certID).Msg("failed to set certification progress")
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	s.logger.Info().
		Int64("user_id", userID).
		Int64("cert_id", certID).
		Str("status", string(status)).
		Msg("certification progress updated")

	return nil
}

// ListProgressByUser returns a user's standing across all tracks they
// have progress on.
func (s *CertificationService) ListProgressByUser(ctx context.Context, userID int64) ([]*domain.CertProgress, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	progress, err := s.certRepo.ListProgressByUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to list certification progress")
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return progress, nil
}
