package repository

import "errors"

var (
	// ErrNotFound is returned when a referenced document does not exist.
	ErrNotFound = errors.New("not found")
	// ErrEmailExists is returned when a registration hits the unique email index.
	ErrEmailExists = errors.New("email already exists")
)
