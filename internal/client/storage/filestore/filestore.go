// Package filestore keeps the client's local state as one file per key
// inside a directory. Several processes can share the directory; changes
// to the token file are observable through WatchToken.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/iudanet/metareview/internal/client/storage"
	"github.com/iudanet/metareview/internal/models"
)

// Storage is a directory backed storage.Storage
type Storage struct {
	dir string
}

var (
	_ storage.Storage      = (*Storage)(nil)
	_ storage.TokenWatcher = (*Storage)(nil)
)

// New creates the directory if needed and returns a store rooted at it
func New(dir string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &Storage{dir: dir}, nil
}

// Close is a no-op, files are not held open between calls
func (s *Storage) Close() error { return nil }

func (s *Storage) path(key string) string {
	return filepath.Join(s.dir, key)
}

func (s *Storage) read(key string) (string, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return string(data), nil
}

// write записывает значение атомарно через временный файл и os.Rename
func (s *Storage) write(key, value string) (err error) {
	tmp, err := os.CreateTemp(s.dir, "."+key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.WriteString(value); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err = os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err = os.Rename(tmpName, s.path(key)); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *Storage) remove(key string) error {
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// SaveToken stores the bearer token
func (s *Storage) SaveToken(ctx context.Context, token string) error {
	return s.write(storage.KeyAuthToken, token)
}

// GetToken retrieves the stored bearer token
func (s *Storage) GetToken(ctx context.Context) (string, error) {
	token, err := s.read(storage.KeyAuthToken)
	if err != nil {
		return "", err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", storage.ErrTokenNotFound
	}
	return token, nil
}

// DeleteToken removes the stored token
func (s *Storage) DeleteToken(ctx context.Context) error {
	return s.remove(storage.KeyAuthToken)
}

// SavePointer stores the active project pointer
func (s *Storage) SavePointer(ctx context.Context, pointer models.ProjectPointer) error {
	// Имя пишем первым: id является признаком наличия указателя
	if err := s.write(storage.KeyActiveProjectName, pointer.Name); err != nil {
		return err
	}
	return s.write(storage.KeyActiveProjectID, pointer.IDString())
}

// GetPointer retrieves the active project pointer
func (s *Storage) GetPointer(ctx context.Context) (*models.ProjectPointer, error) {
	id, err := s.read(storage.KeyActiveProjectID)
	if err != nil {
		return nil, err
	}
	name, err := s.read(storage.KeyActiveProjectName)
	if err != nil {
		return nil, err
	}
	return storage.ParsePointer(strings.TrimSpace(id), name)
}

// DeletePointer removes the active project pointer
func (s *Storage) DeletePointer(ctx context.Context) error {
	if err := s.remove(storage.KeyActiveProjectID); err != nil {
		return err
	}
	return s.remove(storage.KeyActiveProjectName)
}

// WatchToken watches the storage directory and reports every change of the
// token file until ctx is cancelled. onChange receives the token as it is
// after the change, or "" if the token was removed.
func (s *Storage) WatchToken(ctx context.Context, onChange func(token string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Следим за каталогом: файл токена заменяется через rename
	if err := watcher.Add(s.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", s.dir, err)
	}

	target := filepath.Clean(s.path(storage.KeyAuthToken))
	last, _ := s.GetToken(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			current, err := s.GetToken(ctx)
			if err != nil && !errors.Is(err, storage.ErrTokenNotFound) {
				continue
			}
			if current == last {
				continue
			}
			last = current
			onChange(current)

		case _, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			// Ошибки наблюдателя не фатальны
		}
	}
}
