package storage

import (
	"context"

	"github.com/iudanet/metareview/internal/models"
)

// Keys of the local key-value surface. Values are plain strings.
const (
	KeyAuthToken         = "authToken"
	KeyActiveProjectID   = "activeProjectId"
	KeyActiveProjectName = "activeProjectName"
)

// TokenStorage defines the persistent credential store.
// It holds exactly one bearer token; absence of the token means "no session".
type TokenStorage interface {
	// SaveToken stores the token, replacing any previous one
	SaveToken(ctx context.Context, token string) error

	// GetToken returns the stored token
	// Returns ErrTokenNotFound if no token is stored
	GetToken(ctx context.Context) (string, error)

	// DeleteToken removes the stored token.
	// Deleting a missing token is not an error.
	DeleteToken(ctx context.Context) error
}

// ProjectPointerStorage defines storage for the active project pointer.
// The pointer is kept as two plain keys: project id and display name.
type ProjectPointerStorage interface {
	// SavePointer stores the pointer, replacing any previous one
	SavePointer(ctx context.Context, pointer models.ProjectPointer) error

	// GetPointer returns the stored pointer
	// Returns ErrPointerNotFound if no pointer is stored
	// Returns ErrInvalidPointer if the stored id cannot be parsed
	GetPointer(ctx context.Context) (*models.ProjectPointer, error)

	// DeletePointer removes both pointer keys. Idempotent.
	DeletePointer(ctx context.Context) error
}

// TokenWatcher is implemented by stores that can observe changes made
// to the token by other processes sharing the same store.
type TokenWatcher interface {
	// WatchToken blocks until ctx is done, calling onChange with the
	// current token (empty if it was removed) after every external change.
	WatchToken(ctx context.Context, onChange func(token string)) error
}

// Storage is the complete local store used by the client
type Storage interface {
	TokenStorage
	ProjectPointerStorage
	Close() error
}
