package storage

import (
	"fmt"
	"strconv"

	"github.com/iudanet/metareview/internal/models"
)

// ParsePointer собирает указатель из сохраненных строковых значений.
// Используется всеми реализациями хранилища.
func ParsePointer(id, name string) (*models.ProjectPointer, error) {
	if id == "" {
		return nil, ErrPointerNotFound
	}

	parsed, err := strconv.ParseInt(id, 10, 64)
	if err != nil || parsed <= 0 {
		return nil, fmt.Errorf("%w: id %q", ErrInvalidPointer, id)
	}

	return &models.ProjectPointer{ID: parsed, Name: name}, nil
}
