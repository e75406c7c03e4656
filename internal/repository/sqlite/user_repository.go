package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"listing-service/internal/domain"
	"listing-service/internal/repository"
)

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	hash TEXT NOT NULL,
	salt TEXT NOT NULL,
	token TEXT NOT NULL UNIQUE,
	username TEXT NOT NULL,
	phone TEXT NOT NULL DEFAULT '',
	avatar TEXT NULL,
	newsletter INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

const selectUser = `
SELECT id, email, hash, salt, token, username, phone, avatar, newsletter, created_at, updated_at
FROM users
`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createUsersTable); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	avatar, err := encodeImage(user.Account.Avatar)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO users (id, email, hash, salt, token, username, phone, avatar, newsletter, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		user.Hash,
		user.Salt,
		user.Token,
		user.Account.Username,
		user.Account.Phone,
		avatar,
		user.Newsletter,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user already exists: %w", domain.ErrConflict)
		}
		return storeErr("insert user", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, selectUser+`WHERE id = ?`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, selectUser+`WHERE email = ?`, email))
}

func (r *UserRepository) GetByToken(ctx context.Context, token string) (*domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, selectUser+`WHERE token = ?`, token))
}

func (r *UserRepository) UpdateToken(ctx context.Context, id, token string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE users
SET token=?, updated_at=?
WHERE id=?`,
		token,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return storeErr("update user token", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return storeErr("user token rows affected", err)
	}
	if aff == 0 {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scanUser(row interface {
	Scan(dest ...any) error
}) (*domain.User, error) {
	var (
		user   domain.User
		avatar sql.NullString
	)
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Hash,
		&user.Salt,
		&user.Token,
		&user.Account.Username,
		&user.Account.Phone,
		&avatar,
		&user.Newsletter,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user: %w", domain.ErrNotFound)
		}
		return nil, storeErr("scan user", err)
	}

	ref, err := decodeImage(avatar)
	if err != nil {
		return nil, err
	}
	user.Account.Avatar = ref
	return &user, nil
}
