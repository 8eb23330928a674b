// ABOUTME: Account registration and login with bcrypt password hashes.
// ABOUTME: Unknown users and wrong passwords are indistinguishable to callers.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/harperreed/labtrack/internal/models"
	"github.com/harperreed/labtrack/internal/storage"
)

var (
	// ErrInvalidCredentials is returned by Login for any mismatch.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrEmptyPassword is returned when registering without a password.
	ErrEmptyPassword = errors.New("password must not be empty")
)

// Service registers and authenticates users.
type Service struct {
	users storage.UserStore
	cost  int
}

// Option configures a Service.
type Option func(*Service)

// WithCost sets the bcrypt cost.
func WithCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// NewService creates a Service over users.
func NewService(users storage.UserStore, opts ...Option) *Service {
	s := &Service{users: users, cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an account. Taken usernames yield storage.ErrUserExists.
func (s *Service) Register(username, password string) (*models.User, error) {
	if err := models.ValidateUsername(username); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, ErrEmptyPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := models.NewUser(username, string(hash))
	if err := s.users.CreateUser(u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login checks a username and password.
func (s *Service) Login(username, password string) (*models.User, error) {
	u, err := s.users.GetUser(username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}
