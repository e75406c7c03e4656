package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"listing-service/internal/credential"
	"listing-service/internal/domain"
	"listing-service/internal/repository"
	"listing-service/internal/storage"
)

// SignupInput carries the fields of a signup form.
type SignupInput struct {
	Email      string `validate:"required"`
	Password   string `validate:"required"`
	Username   string `validate:"required"`
	Phone      string
	Newsletter bool
	Avatar     *storage.Image
}

// UserService describes user lifecycle operations.
type UserService interface {
	Signup(ctx context.Context, in SignupInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, error)
	FindByToken(ctx context.Context, token string) (*domain.User, error)
	RotateToken(ctx context.Context, userID string) (*domain.User, error)
}

// UserServiceConfig tunes a UserService.
type UserServiceConfig struct {
	// Namespace prefixes every storage folder, e.g. "vinted".
	Namespace string
	Logger    *logrus.Logger
}

type userService struct {
	users    repository.UserRepository
	creds    *credential.Service
	uploader storage.Uploader
	cfg      UserServiceConfig
}

func NewUserService(users repository.UserRepository, creds *credential.Service, uploader storage.Uploader, cfg UserServiceConfig) UserService {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &userService{
		users:    users,
		creds:    creds,
		uploader: uploader,
		cfg:      cfg,
	}
}

func (s *userService) Signup(ctx context.Context, in SignupInput) (*domain.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	if err := checkStruct(in); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, fmt.Errorf("%w: this email already has an account", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	salt, err := s.creds.IssueSalt()
	if err != nil {
		return nil, fmt.Errorf("issue salt: %w", err)
	}
	token, err := s.creds.IssueToken()
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	user := &domain.User{
		ID:    uuid.NewString(),
		Email: in.Email,
		Salt:  salt,
		Hash:  s.creds.Derive(in.Password, salt),
		Token: token,
		Account: domain.Account{
			Username: in.Username,
			Phone:    strings.TrimSpace(in.Phone),
		},
		Newsletter: in.Newsletter,
	}

	if in.Avatar != nil {
		avatar := *in.Avatar
		avatar.Name = "avatar"
		ref, err := s.uploader.UploadOne(ctx, avatar, storage.UserFolder(s.cfg.Namespace, user.ID))
		if err != nil {
			return nil, fmt.Errorf("upload avatar: %w", err)
		}
		user.Account.Avatar = &ref
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.cfg.Logger.WithFields(logrus.Fields{"user_id": user.ID}).Info("user signed up")
	return user.Public(), nil
}

func (s *userService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("%w: user not found", domain.ErrNotFound)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if !s.creds.Verify(password, user.Salt, user.Hash) {
		return nil, domain.ErrUnauthorized
	}

	return user.Public(), nil
}

func (s *userService) FindByToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, fmt.Errorf("user: %w", domain.ErrNotFound)
	}
	user, err := s.users.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}

func (s *userService) RotateToken(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	token, err := s.creds.IssueToken()
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	if err := s.users.UpdateToken(ctx, user.ID, token); err != nil {
		return nil, err
	}
	user.Token = token

	s.cfg.Logger.WithFields(logrus.Fields{"user_id": user.ID}).Info("user token rotated")
	return user.Public(), nil
}
