// Package service provides business logic services for Emblem.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/halcyon-labs/emblem/internal/domain"
	"github.com/halcyon-labs/emblem/internal/repository"
)

// dummyHash is compared against when authentication targets an unknown
// username, so the absent-user path costs one bcrypt verification just
// like the wrong-password path.
var dummyHash = func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("emblem-timing-pad"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return h
}()

// AccountService owns the user record lifecycle: creation with
// uniqueness enforcement and password hashing, credential verification,
// and selective profile mutation.
type AccountService struct {
	userRepo repository.UserRepository
	logger   zerolog.Logger
}

// NewAccountService creates a new AccountService.
func NewAccountService(userRepo repository.UserRepository, logger zerolog.Logger) *AccountService {
	return &AccountService{
		userRepo: userRepo,
		logger:   logger.With().Str("service", "account").Logger(),
	}
}

// RegisterInput contains the data needed to register a new account.
type RegisterInput struct {
	Username string
	Password string
	Email    *string
	FullName *string
}

// RegisterOutput contains the result of a registration.
type RegisterOutput struct {
	UserID int64
}

// Register creates a new account. Username and password are required;
// the password is bcrypt-hashed before anything touches the store. The
// store's unique constraints are the authoritative duplicate check; the
// pre-read only exists to fail fast without burning a hash.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*RegisterOutput, error) {
	if input.Username == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", domain.ErrMissingField)
	}

	exists, err := s.userRepo.ExistsByUsernameOrEmail(ctx, input.Username, input.Email)
	if err != nil {
		s.logger.Error().Err(err).Str("username", input.Username).Msg("failed to check account existence")
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if exists {
		return nil, fmt.Errorf("%w: username or email already taken", domain.ErrUserAlreadyExists)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, fmt.Errorf("%w: failed to hash password", domain.ErrStoreUnavailable)
	}

	user := domain.NewUser(input.Username, input.Email, string(passwordHash))
	user.FullName = input.FullName

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			// Lost the race between pre-check and insert; the
			// constraint verdict wins.
			return nil, err
		}
		s.logger.Error().Err(err).Str("username", input.Username).Msg("failed to create account")
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Str("username", user.Username).
		Msg("account registered")

	return &RegisterOutput{UserID: user.ID}, nil
}

// Authenticate verifies credentials and returns the account's ID.
// Unknown usernames and wrong passwords yield the same error, and both
// paths perform one bcrypt comparison so they are not distinguishable
// by response shape or timing.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (int64, error) {
	if username == "" || password == "" {
		return 0, fmt.Errorf("%w: username and password are required", domain.ErrMissingField)
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			s.logger.Debug().Str("username", username).Msg("unknown username during authentication")
			return 0, domain.ErrInvalidCredentials
		}
		s.logger.Error().Err(err).Str("username", username).Msg("failed to look up account")
		return 0, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Debug().Str("username", username).Msg("invalid password during authentication")
		return 0, domain.ErrInvalidCredentials
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Str("username", user.Username).
		Msg("account authenticated")

	return user.ID, nil
}

// UpdateProfile applies a sparse profile patch to one account. A patch
// touching no recognized fields is rejected before any store access.
// Omitted fields keep their stored values; a supplied empty string is a
// valid value that clears the field.
func (s *AccountService) UpdateProfile(ctx context.Context, userID int64, patch domain.ProfilePatch) error {
	if patch.IsEmpty() {
		return domain.ErrNoUpdateFields
	}

	if err := s.userRepo.UpdateProfile(ctx, userID, patch); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrNoUpdateFields) {
			return err
		}
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to update profile")
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	s.logger.Info().Int64("user_id", userID).Msg("profile updated")
	return nil
}

// GetByID retrieves an account by ID.
func (s *AccountService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Int64("user_id", id).Msg("failed to get account")
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return user, nil
}

// ListAccountsInput contains pagination options for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// ListAccountsOutput contains the result of listing accounts.
type ListAccountsOutput struct {
	Users      []*domain.User
	TotalCount int64
}

// List returns all accounts with pagination. Used by the admin CLI.
func (s *AccountService) List(ctx context.Context, input ListAccountsInput) (*ListAccountsOutput, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}

	result, err := s.userRepo.List(ctx, repository.ListOptions{
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list accounts")
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	return &ListAccountsOutput{
		Users:      result.Items,
		TotalCount: result.Total,
	}, nil
}
