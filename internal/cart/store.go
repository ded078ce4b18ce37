package cart

import (
	"context"

	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/storage"
)

// Store persists the whole cart as one JSON array. Storage is the source of
// truth; every read goes back to it.
type Store struct {
	kv storage.Store
}

func NewStore(kv storage.Store) *Store {
	return &Store{kv: kv}
}

func (s *Store) Load(ctx context.Context) ([]models.CartLine, error) {
	var lines []models.CartLine

	found, err := storage.GetJSON(ctx, s.kv, storage.CartKey, &lines)
	if err != nil {
		return nil, appErrors.StorageError("Failed to read cart").WithError(err)
	}

	if !found || lines == nil {
		return []models.CartLine{}, nil
	}

	return lines, nil
}

func (s *Store) Save(ctx context.Context, lines []models.CartLine) error {
	if lines == nil {
		lines = []models.CartLine{}
	}

	if err := storage.SetJSON(ctx, s.kv, storage.CartKey, lines); err != nil {
		return appErrors.StorageError("Failed to save cart").WithError(err)
	}

	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Remove(ctx, storage.CartKey); err != nil {
		return appErrors.StorageError("Failed to clear cart").WithError(err)
	}

	return nil
}
