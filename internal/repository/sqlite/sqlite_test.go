package sqlite

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"listing-service/internal/domain"
	"listing-service/internal/repository"
)

func setupDB(t *testing.T) (repository.UserRepository, repository.OfferRepository) {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	users := NewUserRepository(db)
	offers := NewOfferRepository(db)
	require.NoError(t, InitAll(context.Background(), users, offers))
	return users, offers
}

func newUser(t *testing.T, users repository.UserRepository, email string) *domain.User {
	t.Helper()
	u := &domain.User{
		ID:      uuid.NewString(),
		Email:   email,
		Hash:    "hash",
		Salt:    "salt",
		Token:   "token-" + email,
		Account: domain.Account{Username: "user-" + email, Phone: "0600"},
	}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func newOffer(t *testing.T, offers repository.OfferRepository, owner *domain.User, name string, price float64) *domain.Offer {
	t.Helper()
	o := &domain.Offer{
		ID:      uuid.NewString(),
		Name:    name,
		Price:   price,
		OwnerID: owner.ID,
	}
	require.NoError(t, offers.Create(context.Background(), o))
	return o
}

func ptr[T any](v T) *T { return &v }
