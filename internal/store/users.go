package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/fentz26/planner/internal/models"
)

// SplitFullName splits "First Middle Last" on the last space. A missing
// part is stored as "-".
func SplitFullName(fullName string) (first, last string) {
	fullName = strings.TrimSpace(fullName)
	if i := strings.LastIndex(fullName, " "); i >= 0 {
		first = strings.TrimSpace(fullName[:i])
		last = strings.TrimSpace(fullName[i+1:])
	} else {
		first = fullName
	}
	if first == "" {
		first = "-"
	}
	if last == "" {
		last = "-"
	}
	return first, last
}

// HashPassword returns a bcrypt hash of password.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// CreateUser registers fullName with password.
func (s *Store) CreateUser(ctx context.Context, fullName, password string) (models.User, error) {
	first, last := SplitFullName(fullName)
	hash, err := HashPassword(password)
	if err != nil {
		return models.User{}, err
	}

	u := models.User{FirstName: first, LastName: last, PasswordHash: hash}
	q := s.db.Rebind(`INSERT INTO users (first_name, last_name, password_hash) VALUES (?, ?, ?) RETURNING id`)
	if err := s.db.QueryRowxContext(ctx, q, first, last, hash).Scan(&u.ID); err != nil {
		if isUniqueViolation(err) {
			return models.User{}, ErrUserExists
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// FindUserByFullName looks a user up by "First Last".
func (s *Store) FindUserByFullName(ctx context.Context, fullName string) (models.User, error) {
	q := s.db.Rebind(`SELECT id, first_name, last_name, password_hash FROM users WHERE (first_name || ' ' || last_name) = ?`)
	var u models.User
	if err := s.db.GetContext(ctx, &u, q, strings.TrimSpace(fullName)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// Authenticate returns the user when fullName and password match.
func (s *Store) Authenticate(ctx context.Context, fullName, password string) (models.User, error) {
	u, err := s.FindUserByFullName(ctx, fullName)
	if err != nil {
		return models.User{}, err
	}
	if !CheckPassword(u.PasswordHash, password) {
		return models.User{}, ErrUserNotFound
	}
	return u, nil
}

// ListUsers returns the directory ordered by name.
func (s *Store) ListUsers(ctx context.Context) ([]models.DirectoryUser, error) {
	const q = `SELECT id, first_name || ' ' || last_name AS name FROM users ORDER BY first_name, last_name`
	out := []models.DirectoryUser{}
	if err := s.db.SelectContext(ctx, &out, q); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

// DeleteUser removes a user and, through the foreign key, their comments.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return ErrUserNotFound
	}
	return nil
}
