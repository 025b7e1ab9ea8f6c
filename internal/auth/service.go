package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"signal-relay/internal/domain"
	"signal-relay/internal/store"
)

const minPasswordLen = 8

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPasswordTooShort   = errors.New("password too short")
)

// Service registers users and exchanges credentials for tokens.
type Service struct {
	users  store.Users
	tokens *Tokens
}

func NewService(users store.Users, tokens *Tokens) *Service {
	return &Service{users: users, tokens: tokens}
}

func (s *Service) Register(ctx context.Context, email, password string) (*domain.User, error) {
	if err := domain.ValidateEmail(email); err != nil {
		return nil, err
	}
	if len(password) < minPasswordLen {
		return nil, ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return s.users.Create(ctx, email, string(hash))
}

// Login verifies credentials and returns a fresh token. The error does not
// reveal whether the email or the password was wrong.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, hash, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.tokens.Issue(user.ID)
}
