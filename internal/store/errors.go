package store

import "errors"

// Sentinel errors for store operations.
var (
	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user not found")
	ErrTaskNotFound = errors.New("task not found")
	ErrNotCreator   = errors.New("only the creator may do this")
)
