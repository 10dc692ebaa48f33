package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/halcyon-labs/emblem/internal/domain"
	"github.com/halcyon-labs/emblem/internal/repository"
)

// badgeRepository implements repository.BadgeRepository for PostgreSQL.
type badgeRepository struct {
	db *DB
}

// NewBadgeRepository creates a new PostgreSQL badge repository.
func NewBadgeRepository(db *DB) repository.BadgeRepository {
	return &badgeRepository{db: db}
}

// Create creates a new badge.
func (r *badgeRepository) Create(ctx context.Context, badge *domain.Badge) error {
	query := `
		INSERT INTO badges (name, description, icon_url, criteria, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.db.Pool.QueryRow(ctx, query,
		badge.Name,
		badge.Description,
		badge.IconURL,
		badge.Criteria,
		badge.CreatedAt,
	).Scan(&badge.ID)
	if err != nil {
		return fmt.Errorf("failed to create badge: %w", err)
	}

	return nil
}

// GetByID retrieves a badge by ID.
func (r *badgeRepository) GetByID(ctx context.Context, id int64) (*domain.Badge, error) {
	query := `
		SELECT id, name, description, icon_url, criteria, created_at
		FROM badges
		WHERE id = $1
	`

	badge := &domain.Badge{}
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&badge.ID,
		&badge.Name,
		&badge.Description,
		&badge.IconURL,
		&badge.Criteria,
		&badge.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBadgeNotFound
		}
		return nil, fmt.Errorf("failed to get badge: %w", err)
	}

	return badge, nil
}

// List returns the whole badge catalog.
func (r *badgeRepository) List(ctx context.Context) ([]*domain.Badge, error) {
	query := `
		SELECT id, name, description, icon_url, criteria, created_at
		FROM badges
		ORDER BY id
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}
	defer rows.Close()

	var badges []*domain.Badge
	for rows.Next() {
		badge := &domain.Badge{}
		if err := rows.Scan(&badge.ID, &badge.Name, &badge.Description, &badge.IconURL, &badge.Criteria, &badge.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan badge: %w", err)
		}
		badges = append(badges, badge)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating badges: %w", err)
	}

	return badges, nil
}

// UpdateIconURL sets the icon URL for a badge.
func (r *badgeRepository) UpdateIconURL(ctx context.Context, id int64, iconURL string) error {
	result, err := r.db.Pool.Exec(ctx, `UPDATE badges SET icon_url = $1 WHERE id = $2`, iconURL, id)
	if err != nil {
		return fmt.Errorf("failed to update badge icon: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrBadgeNotFound
	}

	return nil
}

// Ensure badgeRepository implements repository.BadgeRepository.
var _ repository.BadgeRepository = (*badgeRepository)(nil)
