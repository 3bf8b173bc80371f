package storage

import "errors"

// Common client storage errors
var (
	// ErrTokenNotFound indicates that no token is stored
	ErrTokenNotFound = errors.New("auth token not found")

	// ErrPointerNotFound indicates that no active project pointer is stored
	ErrPointerNotFound = errors.New("active project pointer not found")

	// ErrInvalidPointer indicates that the stored project id is malformed
	ErrInvalidPointer = errors.New("active project pointer is invalid")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
