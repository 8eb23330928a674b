// ABOUTME: User account model for the credential store.
// ABOUTME: Usernames double as storage key segments, so their alphabet is restricted.
package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidUsername is returned when a username is empty or uses unsupported characters.
var ErrInvalidUsername = errors.New("invalid username")

// User is a registered account.
type User struct {
	ID           uuid.UUID `json:"id" yaml:"id"`
	Username     string    `json:"username" yaml:"username"`
	PasswordHash string    `json:"password_hash" yaml:"password_hash"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
}

// NewUser creates a User with a generated UUID.
func NewUser(username, passwordHash string) *User {
	return &User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
}

// ValidateUsername accepts 1-64 characters from [A-Za-z0-9._-].
func ValidateUsername(s string) error {
	if s == "" || len(s) > 64 || s == "." || s == ".." {
		return ErrInvalidUsername
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.', r == '_', r == '-':
		default:
			return ErrInvalidUsername
		}
	}
	return nil
}
