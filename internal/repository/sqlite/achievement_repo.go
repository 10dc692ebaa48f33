package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/halcyon-labs/emblem/internal/domain"
	"github.com/halcyon-labs/emblem/internal/repository"
)

// achievementRepository implements repository.AchievementRepository for SQLite.
type achievementRepository struct {
	db *DB
}

// NewAchievementRepository creates a new SQLite achievement repository.
func NewAchievementRepository(db *DB) repository.AchievementRepository {
	return &achievementRepository{db: db}
}

// Create awards a badge to a user.
func (r *achievementRepository) Create(ctx context.Context, a *domain.Achievement) error {
	query := `
		INSERT INTO user_badges (user_id, badge_id, earned_at, share_token)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		a.UserID,
		a.BadgeID,
		a.EarnedAt.Format(time.RFC3339),
		a.ShareToken.String(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrBadgeAlreadyAwarded
		}
		if isForeignKeyViolation(err) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("failed to award badge: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	a.ID = id

	return nil
}

// ListByUser returns badges earned by a user, newest first.
func (r *achievementRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.EarnedBadge, error) {
	query := `
		SELECT b.id, b.name, b.description, b.icon_url, b.criteria, b.created_at,
		       ub.earned_at, ub.share_token
		FROM user_badges ub
		JOIN badges b ON b.id = ub.badge_id
		WHERE ub.user_id = ?
		ORDER BY ub.earned_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list earned badges: %w", err)
	}
	defer rows.Close()

	var earned []*domain.EarnedBadge
	for rows.Next() {
		eb := &domain.EarnedBadge{}
		var badgeCreatedAt, earnedAt, shareToken string
		err := rows.Scan(
			&eb.ID,
			&eb.Name,
			&eb.Description,
			&eb.IconURL,
			&eb.Criteria,
			&badgeCreatedAt,
			&earnedAt,
			&shareToken,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan earned badge: %w", err)
		}
		if eb.Badge.CreatedAt, err = parseTime("created_at", badgeCreatedAt); err != nil {
			return nil, err
		}
		if eb.EarnedAt, err = parseTime("earned_at", earnedAt); err != nil {
			return nil, err
		}
		eb.ShareToken, err = uuid.Parse(shareToken)
		if err != nil {
			return nil, fmt.Errorf("failed to parse share token: %w", err)
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
		WHERE ub.share_token = ?
	`

	eb := &domain.EarnedBadge{}
	var badgeCreatedAt, earnedAt, shareToken string

	err := r.db.QueryRowContext(ctx, query, token.String()).Scan(
		&eb.ID,
		&eb.Name,
		&eb.Description,
		&eb.IconURL,
		&eb.Criteria,
		&badgeCreatedAt,
		&earnedAt,
		&shareToken,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrAchievementNotFound
		}
		return nil, fmt.Errorf("failed to get achievement by share token: %w", err)
	}

	if eb.Badge.CreatedAt, err = parseTime("created_at", badgeCreatedAt); err != nil {
		return nil, err
	}
	if eb.EarnedAt, err = parseTime("earned_at", earnedAt); err != nil {
		return nil, err
	}
	eb.ShareToken, err = uuid.Parse(shareToken)
	if err != nil {
		return nil, fmt.Errorf("failed to parse share token: %w", err)
	}

	return eb, nil
}

// Ensure achievementRepository implements repository.AchievementRepository.
var _ repository.AchievementRepository = (*achievementRepository)(nil)
