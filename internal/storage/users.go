// ABOUTME: User account operations for SQLite storage.
// ABOUTME: Usernames are unique; duplicates surface as ErrUserExists.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/harperreed/labtrack/internal/models"
)

// CreateUser stores a new account.
func (d *DB) CreateUser(u *models.User) error {
	_, err := d.db.Exec(`
		INSERT INTO users (id, username, password_hash, created_at)
		VALUES (?, ?, ?, ?)
	`, u.ID.String(), u.Username, u.PasswordHash, formatTimestamp(u.CreatedAt))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("create user %s: %w", u.Username, ErrUserExists)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUser retrieves an account by username.
func (d *DB) GetUser(username string) (*models.User, error) {
	row := d.db.QueryRow(`
		SELECT id, username, password_hash, created_at
		FROM users
		WHERE username = ?
	`, username)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", username, ErrNotFound)
		}
		return nil, err
	}
	return u, nil
}

// ListUsers returns every account ordered by username.
func (d *DB) ListUsers() ([]*models.User, error) {
	rows, err := d.db.Query(`
		SELECT id, username, password_hash, created_at
		FROM users
		ORDER BY username ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(s scanner) (*models.User, error) {
	var u models.User
	var idStr, createdAt string
	if err := s.Scan(&idStr, &u.Username, &u.PasswordHash, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.ID, _ = uuid.Parse(idStr)
	u.CreatedAt = parseTimestamp(createdAt)
	return &u, nil
}
