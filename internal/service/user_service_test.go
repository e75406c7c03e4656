package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-service/internal/credential"
	"listing-service/internal/domain"
)

func TestSignup_ReturnsPublicFieldsAndResolvesToken(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	u, err := f.users.Signup(ctx, SignupInput{Email: "a@x.com", Password: "p", Username: "u", Newsletter: true})

	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Len(t, u.Token, 64)
	assert.Empty(t, u.Hash)
	assert.Empty(t, u.Salt)
	assert.Equal(t, "u", u.Account.Username)

	found, err := f.users.FindByToken(ctx, u.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	stored, err := f.userRepo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Salt, 64)
	assert.True(t, credential.New().Verify("p", stored.Salt, stored.Hash))
	assert.NotEqual(t, stored.Salt, stored.Token)
}

func TestSignup_DuplicateEmailConflicts(t *testing.T) {
	f := newFixture(t, true)
	f.signup(t, "a@x.com")

	_, err := f.users.Signup(context.Background(), SignupInput{Email: "a@x.com", Password: "other", Username: "v"})

	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestSignup_MissingFields(t *testing.T) {
	f := newFixture(t, true)

	tests := []struct {
		name string
		in   SignupInput
	}{
		{name: "email", in: SignupInput{Password: "p", Username: "u"}},
		{name: "password", in: SignupInput{Email: "a@x.com", Username: "u"}},
		{name: "username", in: SignupInput{Email: "a@x.com", Password: "p", Username: "   "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.users.Signup(context.Background(), tt.in)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
			require.ErrorContains(t, err, tt.name)
		})
	}
}

func TestSignup_UploadsAvatarBeforePersisting(t *testing.T) {
	f := newFixture(t, true)
	avatar := img("face")

	u, err := f.users.Signup(context.Background(), SignupInput{Email: "a@x.com", Password: "p", Username: "u", Avatar: &avatar})

	require.NoError(t, err)
	require.NotNil(t, u.Account.Avatar)
	assert.Equal(t, "vinted/users/"+u.ID+"/avatar", u.Account.Avatar.Key)

	stored, err := f.userRepo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Account.Avatar)
	assert.Equal(t, u.Account.Avatar.SecureURL, stored.Account.Avatar.SecureURL)
}

func TestSignup_AvatarFailureCreatesNoUser(t *testing.T) {
	f := newFixture(t, true)
	f.uploader.failOn = 1
	avatar := img("face")

	_, err := f.users.Signup(context.Background(), SignupInput{Email: "a@x.com", Password: "p", Username: "u", Avatar: &avatar})

	require.ErrorIs(t, err, domain.ErrUpload)
	_, err = f.userRepo.GetByEmail(context.Background(), "a@x.com")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLogin(t *testing.T) {
	f := newFixture(t, true)
	u := f.signup(t, "a@x.com")
	ctx := context.Background()

	got, err := f.users.Login(ctx, "a@x.com", "p")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, u.Token, got.Token)
	assert.Empty(t, got.Hash)

	_, err = f.users.Login(ctx, "a@x.com", "wrong")
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.users.Login(ctx, "b@x.com", "p")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFindByToken_Unknown(t *testing.T) {
	f := newFixture(t, true)

	_, err := f.users.FindByToken(context.Background(), "nope")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.users.FindByToken(context.Background(), "")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRotateToken_InvalidatesPreviousToken(t *testing.T) {
	f := newFixture(t, true)
	u := f.signup(t, "a@x.com")
	ctx := context.Background()

	rotated, err := f.users.RotateToken(ctx, u.ID)
	require.NoError(t, err)
	require.NotEqual(t, u.Token, rotated.Token)

	_, err = f.users.FindByToken(ctx, u.Token)
	require.ErrorIs(t, err, domain.ErrNotFound)
	found, err := f.users.FindByToken(ctx, rotated.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)
}
