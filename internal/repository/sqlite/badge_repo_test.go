package sqlite

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/halcyon-labs/emblem/internal/domain"
)

func TestBadgeRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewBadgeRepository(db)
	ctx := context.Background()

	badge := &domain.Badge{
		Name:        "Go Novice",
		Description: "Completed the Go basics track",
		Criteria:    "Finish all basics modules",
	}
	require.NoError(t, repo.Create(ctx, badge))
	require.NotZero(t, badge.ID)

	got, err := repo.GetByID(ctx, badge.ID)
	require.NoError(t, err)
	require.Equal(t, "Go Novice", got.Name)
	require.Equal(t, "Finish all basics modules", got.Criteria)

	_, err = repo.GetByID(ctx, 9999)
	require.ErrorIs(t, err, domain.ErrBadgeNotFound)

	require.NoError(t, repo.UpdateIconURL(ctx, badge.ID, "/icons/novice.png"))
	got, err = repo.GetByID(ctx, badge.ID)
	require.NoError(t, err)
	require.Equal(t, "/icons/novice.png", got.IconURL)

	require.ErrorIs(t, repo.UpdateIconURL(ctx, 9999, "/icons/x.png"), domain.ErrBadgeNotFound)

	badges, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, badges, 1)
}

func TestBadgeRepository_CorruptTimestamp(t *testing.T) {
	db := newTestDB(t)
	repo := NewBadgeRepository(db)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `
		INSERT INTO badges (name, description, icon_url, criteria, created_at)
		VALUES ('Broken', '', '', '', 'not-a-timestamp')
	`)
	require.NoError(t, err)

	_, err = repo.GetByID(ctx, 1)
	require.Error(t, err)
	require.Contains(t, err.Error(), "created_at")

	_, err = repo.List(ctx)
	require.Error(t, err)
}

func TestAchievementRepository_Award(t *testing.T) {
	db := newTestDB(t)
	userRepo := NewUserRepository(db)
	badgeRepo := NewBadgeRepository(db)
	repo := NewAchievementRepository(db)
	ctx := context.Background()

	user := newTestUser("alice", nil)
	require.NoError(t, userRepo.Create(ctx, user))
	badge := &domain.Badge{Name: "Go Novice"}
	require.NoError(t, badgeRepo.Create(ctx, badge))

	achievement := domain.NewAchievement(user.ID, badge.ID)
	require.NoError(t, repo.Create(ctx, achievement))
	require.NotZero(t, achievement.ID)

	// Awarding the same badge twice is a conflict.
	err := repo.Create(ctx, domain.NewAchievement(user.ID, badge.ID))
	require.ErrorIs(t, err, domain.ErrBadgeAlreadyAwarded)

	// Awarding to a user that does not exist trips the foreign key.
	err = repo.Create(ctx, domain.NewAchievement(9999, badge.ID))
	require.ErrorIs(t, err, domain.ErrUserNotFound)

	earned, err := repo.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, earned, 1)
	require.Equal(t, "Go Novice", earned[0].Name)
	require.Equal(t, achievement.ShareToken, earned[0].ShareToken)

	got, err := repo.GetByShareToken(ctx, achievement.ShareToken)
	require.NoError(t, err)
	require.Equal(t, "Go Novice", got.Name)

	_, err = repo.GetByShareToken(ctx, uuid.New())
	require.ErrorIs(t, err, domain.ErrAchievementNotFound)
}

func TestCertificationRepository_Progress(t *testing.T) {
	db := newTestDB(t)
	userRepo := NewUserRepository(db)
	repo := NewCertificationRepository(db)
	ctx := context.Background()

	user := newTestUser("alice", nil)
	require.NoError(t, userRepo.Create(ctx, user))

	cert := &domain.Certification{
		Name:           "Gopher",
		Description:    "Core Go proficiency",
		RequiredBadges: 3,
	}
	require.NoError(t, repo.Create(ctx, cert))
	require.NotZero(t, cert.ID)

	got, err := repo.GetByID(ctx, cert.ID)
	require.NoError(t, err)
	require.Equal(t, "Gopher", got.Name)
	require.Equal(t, 3, got.RequiredBadges)

	_, err = repo.GetByID(ctx, 9999)
	require.ErrorIs(t, err, domain.ErrCertificationNotFound)

	// First upsert inserts.
	require.NoError(t, repo.UpsertProgress(ctx, user.ID, cert.ID, domain.CertInProgress))
	progress, err := repo.ListProgressByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, progress, 1)
	require.Equal(t, domain.CertInProgress, progress[0].Status)
	require.Nil(t, progress[0].CompletionDate)

	// Second upsert updates in place and stamps completion.
	require.NoError(t, repo.UpsertProgress(ctx, user.ID, cert.ID, domain.CertCompleted))
	progress, err = repo.ListProgressByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, progress, 1)
	require.Equal(t, domain.CertCompleted, progress[0].Status)
	require.NotNil(t, progress[0].CompletionDate)
}
