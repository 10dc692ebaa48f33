package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/halcyon-labs/emblem/internal/domain"
	"github.com/halcyon-labs/emblem/internal/repository"
)

// achievementRepository implements repository.AchievementRepository for PostgreSQL.
type achievementRepository struct {
	db *DB
}

// NewAchievementRepository creates a new PostgreSQL achievement repository.
func NewAchievementRepository(db *DB) repository.AchievementRepository {
	return &achievementRepository{db: db}
}

// Create awards a badge to a user.
func (r *achievementRepository) Create(ctx context.Context, a *domain.Achievement) error {
	query := `
		INSERT INTO user_badges (user_id, badge_id, earned_at, share_token)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.db.Pool.QueryRow(ctx, query,
		a.UserID,
		a.BadgeID,
		a.EarnedAt,
		a.ShareToken,
	).Scan(&a.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrBadgeAlreadyAwarded
		}
		if isForeignKeyViolation(err) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("failed to award badge: %w", err)
	}

	return nil
}

// ListByUser returns badges earned by a user, newest first.
func (r *achievementRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.EarnedBadge, error) {
	query := `
		SELECT b.id, b.name, b.description, b.icon_url, b.criteria, b.created_at,
		       ub.earned_at, ub.share_token
		FROM user_badges ub
		JOIN badges b ON b.id = ub.badge_id
		WHERE ub.user_id = $1
		ORDER BY ub.earned_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list earned badges: %w", err)
	}
	defer rows.Close()

	var earned []*domain.EarnedBadge
	for rows.Next() {
		eb := &domain.EarnedBadge{}
		err := rows.Scan(
			&eb.ID,
			&eb.Name,
			&eb.Description,
			&eb.IconURL,
			&eb.Criteria,
			&eb.Badge.CreatedAt,
			&eb.EarnedAt,
			&eb.ShareToken,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan earned badge: %w", err)
		}
		earned = append(earned, eb)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating earned badges: %w", err)
	}

	return earned, nil
}

// GetByShareToken resolves a public share token to the earned badge it
// references.
func (r *achievementRepository) GetByShareToken(ctx context.Context, token uuid.UUID) (*domain.EarnedBadge, error) {
	query := `
		SELECT b.id, b.name, b.description, b.icon_url, b.criteria, b.created_at,
		       ub.earned_at, ub.share_token
		FROM user_badges ub
		JOIN badges b ON b.id = ub.badge_id
		WHERE ub.share_token = $1
	`

	eb := &domain.EarnedBadge{}
	err := r.db.Pool.QueryRow(ctx, query, token).Scan(
		&eb.ID,
		&eb.Name,
		&eb.Description,
		&eb.IconURL,
		&eb.Criteria,
		&eb.Badge.CreatedAt,
		&eb.EarnedAt,
		&eb.ShareToken,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAchievementNotFound
		}
		return nil, fmt.Errorf("failed to get achievement by share token: %w", err)
	}

	return eb, nil
}

// Ensure achievementRepository implements repository.AchievementRepository.
var _ repository.AchievementRepository = (*achievementRepository)(nil)
