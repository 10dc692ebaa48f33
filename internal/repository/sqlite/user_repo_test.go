package sqlite

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/halcyon-labs/emblem/internal/config"
	"github.com/halcyon-labs/emblem/internal/domain"
	"github.com/halcyon-labs/emblem/internal/repository"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewDB(context.Background(), config.DatabaseConfig{
		Driver:          "sqlite",
		Path:            ":memory:",
		JournalMode:     "MEMORY",
		BusyTimeout:     5000,
		CacheSize:       -2000,
		SynchronousMode: "OFF",
	}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Migrate(context.Background()))
	return db
}

func strPtr(s string) *string { return &s }

func newTestUser(username string, email *string) *domain.User {
	return domain.NewUser(username, email, "$2a$10$fakehashfakehashfakehashfakehash")
}

func TestUserRepository_Create(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := newTestUser("alice", strPtr("a@x.com"))
	require.NoError(t, repo.Create(ctx, user))
	require.NotZero(t, user.ID)

	// Duplicate username.
	dup := newTestUser("alice", strPtr("b@y.com"))
	err := repo.Create(ctx, dup)
	require.ErrorIs(t, err, domain.ErrUserAlreadyExists)

	// Duplicate email under a new username.
	dup = newTestUser("bob", strPtr("a@x.com"))
	err = repo.Create(ctx, dup)
	require.ErrorIs(t, err, domain.ErrUserAlreadyExists)

	// Multiple users may omit email entirely.
	require.NoError(t, repo.Create(ctx, newTestUser("carol", nil)))
	require.NoError(t, repo.Create(ctx, newTestUser("dave", nil)))
}

func TestUserRepository_GetByUsername(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	created := newTestUser("alice", strPtr("a@x.com"))
	created.FullName = strPtr("Alice Liddell")
	require.NoError(t, repo.Create(ctx, created))

	user, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, created.ID, user.ID)
	require.Equal(t, "alice", user.Username)
	require.NotNil(t, user.Email)
	require.Equal(t, "a@x.com", *user.Email)
	require.NotNil(t, user.FullName)
	require.Equal(t, "Alice Liddell", *user.FullName)
	require.Nil(t, user.ProfileBio)

	_, err = repo.GetByUsername(ctx, "nobody")
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_ExistsByUsernameOrEmail(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestUser("alice", strPtr("a@x.com"))))

	exists, err := repo.ExistsByUsernameOrEmail(ctx, "alice", nil)
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = repo.ExistsByUsernameOrEmail(ctx, "bob", strPtr("a@x.com"))
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = repo.ExistsByUsernameOrEmail(ctx, "bob", strPtr("b@y.com"))
	require.NoError(t, err)
	require.False(t, exists)
}

func TestUserRepository_UpdateProfile(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := newTestUser("alice", nil)
	user.FullName = strPtr("A")
	user.ProfileBio = strPtr("B")
	require.NoError(t, repo.Create(ctx, user))

	// Patch one field; the other is bit-for-bit unchanged.
	require.NoError(t, repo.UpdateProfile(ctx, user.ID, domain.ProfilePatch{
		ProfileBio: strPtr("C"),
	}))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "A", *got.FullName)
	require.Equal(t, "C", *got.ProfileBio)

	// Empty string is a valid value, distinct from absent.
	require.NoError(t, repo.UpdateProfile(ctx, user.ID, domain.ProfilePatch{
		FullName: strPtr(""),
	}))

	got, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.FullName)
	require.Equal(t, "", *got.FullName)
	require.Equal(t, "C", *got.ProfileBio)

	// Writing the stored value again is a success, not not-found.
	require.NoError(t, repo.UpdateProfile(ctx, user.ID, domain.ProfilePatch{
		ProfileBio: strPtr("C"),
	}))

	// Unknown user.
	err = repo.UpdateProfile(ctx, 9999, domain.ProfilePatch{FullName: strPtr("X")})
	require.ErrorIs(t, err, domain.ErrUserNotFound)

	// Empty patch never reaches the database.
	err = repo.UpdateProfile(ctx, user.ID, domain.ProfilePatch{})
	require.ErrorIs(t, err, domain.ErrNoUpdateFields)
}

func TestUserRepository_List(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	for _, name := range []string{"alice", "bob", "carol"} {
		require.NoError(t, repo.Create(ctx, newTestUser(name, nil)))
	}

	result, err := repo.List(ctx, repository.ListOptions{Limit: 2, Offset: 0})
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	require.EqualValues(t, 3, result.Total)

	result, err = repo.List(ctx, repository.ListOptions{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
}
