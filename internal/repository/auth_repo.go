package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"smart_hub/internal/models"
)

// ErrUsernameTaken is returned by Create when the account already exists.
var ErrUsernameTaken = errors.New("username already taken")

// UserRepository stores the accounts allowed to change hub settings.
// Usernames are compared case-insensitively.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

var _ Authorization = (*UserRepository)(nil)

const (
	insertAccountSQL    = `INSERT INTO users (username, password_hash) VALUES (?, ?)`
	selectAccountSQL    = `SELECT id, username, password_hash FROM users WHERE username = ?`
	uniqueViolationText = "UNIQUE constraint failed"
)

func normalizeUsername(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (r *UserRepository) Create(ctx context.Context, username, passwordHash string) (int, error) {
	name := normalizeUsername(username)
	res, err := r.db.ExecContext(ctx, insertAccountSQL, name, passwordHash)
	if err != nil {
		if strings.Contains(err.Error(), uniqueViolationText) {
			return 0, fmt.Errorf("%q: %w", name, ErrUsernameTaken)
		}
		return 0, fmt.Errorf("create account %q: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("account id for %q: %w", name, err)
	}
	return int(id), nil
}

// GetByUsername returns (nil, nil) for an unknown account.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	name := normalizeUsername(username)
	var u models.User
	err := r.db.QueryRowContext(ctx, selectAccountSQL, name).Scan(&u.ID, &u.Username, &u.PasswordHash)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("load account %q: %w", name, err)
	}
	return &u, nil
}
