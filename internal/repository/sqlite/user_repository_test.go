package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"listing-service/internal/domain"
)

func TestUserRepository_CreateAndLookup(t *testing.T) {
	users, _ := setupDB(t)
	ctx := context.Background()

	u := newUser(t, users, "a@x.com")

	byEmail, err := users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, byEmail.ID)
	require.Equal(t, "hash", byEmail.Hash)
	require.Equal(t, "salt", byEmail.Salt)

	byToken, err := users.GetByToken(ctx, u.Token)
	require.NoError(t, err)
	require.Equal(t, u.ID, byToken.ID)

	byID, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "user-a@x.com", byID.Account.Username)
	require.Nil(t, byID.Account.Avatar)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	users, _ := setupDB(t)
	newUser(t, users, "a@x.com")

	err := users.Create(context.Background(), &domain.User{
		ID:    "other",
		Email: "a@x.com",
		Token: "another-token",
	})

	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestUserRepository_AvatarRoundTrip(t *testing.T) {
	users, _ := setupDB(t)
	ctx := context.Background()

	u := &domain.User{
		ID:    "u1",
		Email: "b@x.com",
		Token: "tok",
		Account: domain.Account{
			Username: "bob",
			Avatar:   &domain.ImageRef{SecureURL: "https://cdn/avatar.png", Key: "vinted/users/u1/avatar.png"},
		},
		Newsletter: true,
	}
	require.NoError(t, users.Create(ctx, u))

	got, err := users.GetByID(ctx, "u1")
	require.NoError(t, err)
	require.True(t, got.Newsletter)
	require.NotNil(t, got.Account.Avatar)
	require.Equal(t, "https://cdn/avatar.png", got.Account.Avatar.SecureURL)
}

func TestUserRepository_NotFound(t *testing.T) {
	users, _ := setupDB(t)

	_, err := users.GetByToken(context.Background(), "missing")

	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserRepository_UpdateToken(t *testing.T) {
	users, _ := setupDB(t)
	ctx := context.Background()
	u := newUser(t, users, "a@x.com")

	require.NoError(t, users.UpdateToken(ctx, u.ID, "fresh"))

	_, err := users.GetByToken(ctx, u.Token)
	require.ErrorIs(t, err, domain.ErrNotFound)
	got, err := users.GetByToken(ctx, "fresh")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	require.ErrorIs(t, users.UpdateToken(ctx, "nobody", "x"), domain.ErrNotFound)
}
