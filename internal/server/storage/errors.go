package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that user with this email already exists
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrProjectNotFound indicates that project was not found or belongs to another user
	ErrProjectNotFound = errors.New("project not found")

	// ErrPaperNotFound indicates that paper was not found
	ErrPaperNotFound = errors.New("paper not found")
)
