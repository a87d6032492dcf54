package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/calculation/backend/internal/domain/identity"
	"github.com/calculation/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormUserRepository(t *testing.T) {
	db := newSQLiteDatabase(t)
	repo := NewGormUserRepository(db.DB)
	ctx := context.Background()

	admin, err := identity.NewUser("admin", "admin@example.com", "Secret123", identity.RoleAdmin)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, admin))
	user, err := identity.NewUser("john", "john@example.com", "Secret123", identity.RoleUser)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, user))

	t.Run("finds by username or email ignoring case", func(t *testing.T) {
		found, err := repo.FindByUsernameOrEmail(ctx, "ADMIN")
		require.NoError(t, err)
		assert.Equal(t, admin.ID, found.ID)

		found, err = repo.FindByUsernameOrEmail(ctx, "John@Example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
		assert.True(t, found.VerifyPassword("Secret123"))

		_, err = repo.FindByUsernameOrEmail(ctx, "nobody")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("finds by reset token", func(t *testing.T) {
		token, err := user.CreateResetToken(time.Hour)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, user))

		found, err := repo.FindByResetToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
		assert.True(t, found.IsResetTokenValid(token))

		_, err = repo.FindByResetToken(ctx, "")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("finds enabled users by exact role", func(t *testing.T) {
		admins, err := repo.FindByRole(ctx, identity.RoleAdmin)
		require.NoError(t, err)
		require.Len(t, admins, 1)
		assert.Equal(t, "admin", admins[0].Username)

		admin.Disable()
		require.NoError(t, repo.Save(ctx, admin))
		admins, err = repo.FindByRole(ctx, identity.RoleAdmin)
		require.NoError(t, err)
		assert.Empty(t, admins)
	})

	t.Run("checks uniqueness excluding the user itself", func(t *testing.T) {
		exists, err := repo.ExistsByUsername(ctx, "John", nil)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByUsername(ctx, "john", &user.ID)
		require.NoError(t, err)
		assert.False(t, exists)

		exists, err = repo.ExistsByEmail(ctx, "", nil)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("filters and counts", func(t *testing.T) {
		users, err := repo.FindAll(ctx, shared.Filter{Filters: map[string]interface{}{"role": string(identity.RoleUser)}})
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "john", users[0].Username)

		count, err := repo.Count(ctx, shared.Filter{Search: "example"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("deletes users", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, user.ID))
		assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), shared.ErrNotFound)
	})
}
