package domain

import "time"

// User represents a registered marketplace member.
//
// Hash and Salt never leave the service layer; Token is the bearer credential.
type User struct {
	ID         string
	Email      string
	Hash       string
	Salt       string
	Token      string
	Account    Account
	Newsletter bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Account holds the public profile of a user.
type Account struct {
	Username string
	Phone    string
	Avatar   *ImageRef
}

// Public returns a copy of the user without derived credential fields.
func (u *User) Public() *User {
	if u == nil {
		return nil
	}
	return &User{
		ID:         u.ID,
		Email:      u.Email,
		Token:      u.Token,
		Account:    u.Account,
		Newsletter: u.Newsletter,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
