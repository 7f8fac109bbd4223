package postgres_test

import (
	"context"
	"testing"

	"github.com/dom/videotube-backend/internal/domain"
	"github.com/dom/videotube-backend/internal/repository/postgres"
	"github.com/dom/videotube-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_Create(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	first, _ := testutil.NewUserBuilder().WithUsername("testuser").Build(t, repo)

	tests := []struct {
		name    string
		mutate  func(u *domain.User)
		wantErr error
	}{
		{
			name: "duplicate username",
			mutate: func(u *domain.User) {
				u.Username = first.Username
			},
			wantErr: domain.ErrDuplicateUser,
		},
		{
			name: "duplicate email",
			mutate: func(u *domain.User) {
				u.Email = first.Email
			},
			wantErr: domain.ErrDuplicateUser,
		},
		{
			name:   "distinct identity",
			mutate: func(u *domain.User) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &domain.User{
				ID:           uuid.New(),
				Username:     "user_" + uuid.NewString()[:8],
				Email:        uuid.NewString()[:8] + "@example.com",
				FullName:     "Someone",
				Avatar:       "https://cdn.test/a.png",
				PasswordHash: "hash",
			}
			tt.mutate(u)

			err := repo.Create(ctx, u)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestUserRepository_Lookup(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().WithUsername("lookup").Build(t, repo)

	t.Run("by id", func(t *testing.T) {
		got, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "lookup", got.Username)
		assert.NotNil(t, got.WatchHistory)
		assert.True(t, got.PasswordMatches("testpassword123"))
	})

	t.Run("by id not found", func(t *testing.T) {
		_, err := repo.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("by username or email", func(t *testing.T) {
		got, err := repo.FindByUsernameOrEmail(ctx, "lookup", "")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)

		got, err = repo.FindByUsernameOrEmail(ctx, "", "lookup@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)

		_, err = repo.FindByUsernameOrEmail(ctx, "ghost", "ghost@example.com")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestUserRepository_Updates(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, repo)

	t.Run("refresh token", func(t *testing.T) {
		require.NoError(t, repo.SetRefreshToken(ctx, user.ID, "token-1"))
		got, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, got.HasSession("token-1"))

		require.NoError(t, repo.SetRefreshToken(ctx, user.ID, ""))
		got, err = repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.False(t, got.HasSession(""))
	})

	t.Run("password hash leaves other columns alone", func(t *testing.T) {
		require.NoError(t, repo.SetPasswordHash(ctx, user.ID, "new-hash"))
		got, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "new-hash", got.PasswordHash)
		assert.Equal(t, user.Avatar, got.Avatar)
	})

	t.Run("media", func(t *testing.T) {
		got, err := repo.SetMedia(ctx, user.ID, domain.MediaCoverImage, "https://cdn.test/cover.png")
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.test/cover.png", got.CoverImage)
		assert.Equal(t, user.Avatar, got.Avatar)

		got, err = repo.SetMedia(ctx, user.ID, domain.MediaAvatar, "https://cdn.test/avatar2.png")
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.test/avatar2.png", got.Avatar)
		assert.Equal(t, "https://cdn.test/cover.png", got.CoverImage)
	})

	t.Run("missing user", func(t *testing.T) {
		assert.ErrorIs(t, repo.SetRefreshToken(ctx, uuid.New(), "x"), domain.ErrUserNotFound)
		_, err := repo.SetMedia(ctx, uuid.New(), domain.MediaAvatar, "x")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}
