package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/halcyon-labs/emblem/internal/domain"
	"github.com/halcyon-labs/emblem/internal/repository"
)

// badgeRepository implements repository.BadgeRepository for SQLite.
type badgeRepository struct {
	db *DB
}

// NewBadgeRepository creates a new SQLite badge repository.
func NewBadgeRepository(db *DB) repository.BadgeRepository {
	return &badgeRepository{db: db}
}

// Create creates a new badge.
func (r *badgeRepository) Create(ctx context.Context, badge *domain.Badge) error {
	query := `
		INSERT INTO badges (name, description, icon_url, criteria, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		badge.Name,
		badge.Description,
		badge.IconURL,
		badge.Criteria,
		badge.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to create badge: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	badge.ID = id

	return nil
}

// GetByID retrieves a badge by ID.
func (r *badgeRepository) GetByID(ctx context.Context, id int64) (*domain.Badge, error) {
	query := `
		SELECT id, name, description, icon_url, criteria, created_at
		FROM badges
		WHERE id = ?
	`

	badge := &domain.Badge{}
	var createdAt string

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&badge.ID,
		&badge.Name,
		&badge.Description,
		&badge.IconURL,
		&badge.Criteria,
		&createdAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrBadgeNotFound
		}
		return nil, fmt.Errorf("failed to get badge: %w", err)
	}

	if badge.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return nil, err
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

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}
	defer rows.Close()

	var badges []*domain.Badge
	for rows.Next() {
		badge := &domain.Badge{}
		var createdAt string
		if err := rows.Scan(&badge.ID, &badge.Name, &badge.Description, &badge.IconURL, &badge.Criteria, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan badge: %w", err)
		}
		if badge.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
			return nil, err
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
	result, err := r.db.ExecContext(ctx, `UPDATE badges SET icon_url = ? WHERE id = ?`, iconURL, id)
	if err != nil {
		return fmt.Errorf("failed to update badge icon: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return domain.ErrBadgeNotFound
	}

	return nil
}

// Ensure badgeRepository implements repository.BadgeRepository.
var _ repository.BadgeRepository = (*badgeRepository)(nil)
