// Package store persists user records. The relay core never touches it;
// only the auth service does, during REGISTER and LOGIN.
package store

import (
	"context"
	"errors"

	"signal-relay/internal/domain"
)

var (
	ErrEmailTaken = errors.New("email already registered")
	ErrNotFound   = errors.New("user not found")
)

// Users is the user-record store consumed by the auth service.
type Users interface {
	// Create stores a new user with the given (already hashed) password.
	// Returns ErrEmailTaken if the email is in use, case-insensitively.
	Create(ctx context.Context, email, passwordHash string) (*domain.User, error)
	// FindByEmail returns the user and its password hash.
	FindByEmail(ctx context.Context, email string) (*domain.User, string, error)
}
