package boltdb

import (
	"context"

	"github.com/iudanet/metareview/internal/client/storage"
	"github.com/iudanet/metareview/internal/models"
)

// SavePointer stores the active project id and name in one transaction
func (s *Storage) SavePointer(ctx context.Context, pointer models.ProjectPointer) error {
	return s.put(
		storage.KeyActiveProjectID, pointer.IDString(),
		storage.KeyActiveProjectName, pointer.Name,
	)
}

// GetPointer retrieves the active project pointer
func (s *Storage) GetPointer(ctx context.Context) (*models.ProjectPointer, error) {
	id, err := s.get(storage.KeyActiveProjectID)
	if err != nil {
		return nil, err
	}
	name, err := s.get(storage.KeyActiveProjectName)
	if err != nil {
		return nil, err
	}
	return storage.ParsePointer(id, name)
}

// DeletePointer removes the active project pointer
func (s *Storage) DeletePointer(ctx context.Context) error {
	return s.delete(storage.KeyActiveProjectID, storage.KeyActiveProjectName)
}
