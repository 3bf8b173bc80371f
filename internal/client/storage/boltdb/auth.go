package boltdb

import (
	"context"

	"github.com/iudanet/metareview/internal/client/storage"
)

// SaveToken stores the bearer token
func (s *Storage) SaveToken(ctx context.Context, token string) error {
	return s.put(storage.KeyAuthToken, token)
}

// GetToken retrieves the stored bearer token
func (s *Storage) GetToken(ctx context.Context) (string, error) {
	token, err := s.get(storage.KeyAuthToken)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", storage.ErrTokenNotFound
	}
	return token, nil
}

// DeleteToken removes the stored token (logout)
func (s *Storage) DeleteToken(ctx context.Context) error {
	return s.delete(storage.KeyAuthToken)
}
