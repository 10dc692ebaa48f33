package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/halcyon-labs/emblem/internal/domain"
	"github.com/halcyon-labs/emblem/internal/repository"
)

// userRepository implements repository.UserRepository for SQLite.
type userRepository struct {
	db *DB
}

// NewUserRepository creates a new SQLite user repository.
func NewUserRepository(db *DB) repository.UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user. The UNIQUE constraints on username and
// email are the authoritative conflict check; a violation maps to
// domain.ErrUserAlreadyExists even when the pre-check raced.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (username, email, password_hash, full_name, profile_bio, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		user.Username,
		nullString(user.Email),
		user.PasswordHash,
		nullString(user.FullName),
		nullString(user.ProfileBio),
		user.CreatedAt.Format(time.RFC3339),
		user.UpdatedAt.Format(time.RFC3339),
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: username or email already taken", domain.ErrUserAlreadyExists)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	user.ID = id

	return nil
}

// GetByID retrieves a user by ID.
func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.getOne(ctx, `WHERE id = ?`, id)
}

// GetByUsername retrieves a user by username.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getOne(ctx, `WHERE username = ?`, username)
}

func (r *userRepository) getOne(ctx context.Context, where string, arg interface{}) (*domain.User, error) {
	query := `
		SELECT id, username, email, password_hash, full_name, profile_bio, created_at, updated_at
		FROM users
	` + where

	user := &domain.User{}
	var email, fullName, profileBio sql.NullString
	var createdAt, updatedAt string

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&email,
		&user.PasswordHash,
		&fullName,
		&profileBio,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.Email = fromNullString(email)
	user.FullName = fromNullString(fullName)
	user.ProfileBio = fromNullString(profileBio)
	if user.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return nil, err
	}
	if user.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return nil, err
	}

	return user, nil
}

// ExistsByUsernameOrEmail checks whether any user holds the given
// username or email. A nil email only checks the username.
func (r *userRepository) ExistsByUsernameOrEmail(ctx context.Context, username string, email *string) (bool, error) {
	query := `SELECT COUNT(*) FROM users WHERE username = ?`
	args := []interface{}{username}
	if email != nil {
		query += ` OR email = ?`
		args = append(args, *email)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return count > 0, nil
}

// UpdateProfile applies a sparse patch in a single UPDATE statement.
// Only column names are assembled dynamically; every value travels as a
// bind parameter. Zero affected rows triggers an existence check so a
// no-change update is not misreported as not-found.
func (r *userRepository) UpdateProfile(ctx context.Context, id int64, patch domain.ProfilePatch) error {
	if patch.IsEmpty() {
		return domain.ErrNoUpdateFields
	}

	sets := make([]string, 0, 3)
	args := make([]interface{}, 0, 4)

	if patch.FullName != nil {
		sets = append(sets, "full_name = ?")
		args = append(args, *patch.FullName)
	}
	if patch.ProfileBio != nil {
		sets = append(sets, "profile_bio = ?")
		args = append(args, *patch.ProfileBio)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC().Format(time.RFC3339))
	args = append(args, id)

	query := `UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		var count int
		if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE id = ?`, id).Scan(&count); err != nil {
			return fmt.Errorf("failed to verify user existence: %w", err)
		}
		if count == 0 {
			return domain.ErrUserNotFound
		}
	}

	return nil
}

// List returns all users with pagination.
func (r *userRepository) List(ctx context.Context, opts repository.ListOptions) (*repository.ListResult[domain.User], error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	query := `
		SELECT id, username, email, password_hash, full_name, profile_bio, created_at, updated_at
		FROM users
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.QueryContext(ctx, query, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user := &domain.User{}
		var email, fullName, profileBio sql.NullString
		var createdAt, updatedAt string

		err := rows.Scan(
			&user.ID,
			&user.Username,
			&email,
			&user.PasswordHash,
			&fullName,
			&profileBio,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}

		user.Email = fromNullString(email)
		user.FullName = fromNullString(fullName)
		user.ProfileBio = fromNullString(profileBio)
		if user.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
			return nil, err
		}
		if user.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
			return nil, err
		}

		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return &repository.ListResult[domain.User]{
		Items:  users,
		Total:  total,
		Offset: opts.Offset,
		Limit:  opts.Limit,
	}, nil
}

// nullString converts an optional string to its SQL representation.
func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// fromNullString converts a nullable column back to an optional string.
func fromNullString(ns sql.NullString) *string {
	if ns.Valid {
		return &ns.String
	}
	return nil
}

// Ensure userRepository implements repository.UserRepository.
var _ repository.UserRepository = (*userRepository)(nil)
