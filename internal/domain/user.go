// Package domain contains entity types without logic, just meta-data.
package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

const MaxEmailLen = 254

var (
	ErrEmailEmpty   = errors.New("email empty")
	ErrEmailTooLong = errors.New("email too long")
	ErrEmailInvalid = errors.New("email invalid")
)

type UserID string

type User struct {
	ID    UserID `json:"id"`
	Email string `json:"email"`
}

// NewUser is a tiny helper to avoid ad-hoc struct literals in callers.
func NewUser(email string) (*User, error) {
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	id := UserID(uuid.NewString())
	return &User{ID: id, Email: email}, nil
}

func ValidateEmail(email string) error {
	if len(email) == 0 {
		return ErrEmailEmpty
	}
	if len(email) > MaxEmailLen {
		return ErrEmailTooLong
	}
	if !strings.Contains(email, "@") {
		return ErrEmailInvalid
	}
	return nil
}
