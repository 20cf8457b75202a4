package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/CUknot/studymatch_backend/models"
	"github.com/CUknot/studymatch_backend/repository"
	"github.com/CUknot/studymatch_backend/utils"
	"github.com/sirupsen/logrus"
)

type AuthService struct {
	users     repository.UserRepository
	jwtSecret string
	ttl       time.Duration
}

func NewAuthService(users repository.UserRepository, jwtSecret string, ttl time.Duration) *AuthService {
	return &AuthService{users: users, jwtSecret: jwtSecret, ttl: ttl}
}

// Signup creates the account and returns a token for it.
func (s *AuthService) Signup(ctx context.Context, name, email, password string) (string, *models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil, ErrNameRequired
	}
	email = strings.TrimSpace(email)
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return "", nil, ErrUserExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return "", nil, fmt.Errorf("lookup user: %w", err)
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Subjects: []string{},
		Goals:    []string{},
	}
	if err := user.SetPassword(password); err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return "", nil, ErrUserExists
		}
		return "", nil, err
	}

	token, err := s.GenerateToken(user.ID)
	if err != nil {
		return "", nil, err
	}
	logrus.WithField("user_id", user.ID).Info("User signed up")
	return token, user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("lookup user: %w", err)
	}
	if err := user.ValidatePassword(password); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.GenerateToken(user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) GenerateToken(userID uint) (string, error) {
	token, err := utils.GenerateToken(userID, s.jwtSecret, s.ttl)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// ValidateToken returns the user id a bearer token was issued for.
func (s *AuthService) ValidateToken(token string) (uint, error) {
	return utils.ParseToken(token, s.jwtSecret)
}
