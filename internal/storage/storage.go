// Package storage defines the key-value boundary that session and cart state
// live behind, the equivalent of a browser's origin-scoped local storage.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

// Store is a synchronous, non-transactional key-value store. A read always
// sees the latest write; there is no caching layer.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}

const (
	TokenKey = "token"
	RoleKey  = "userType"
	CartKey  = "cart"
)

func Key(prefix string, id string) string {
	return prefix + ":" + id
}

// GetJSON decodes the value stored under key into dest.
func GetJSON(ctx context.Context, s Store, key string, dest any) (bool, error) {
	raw, found, err := s.Get(ctx, key)
	if err != nil {
		return false, err
	}

	if !found {
		return false, nil
	}

	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal stored data for key %s: %w", key, err)
	}

	return true, nil
}

// SetJSON encodes value and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for key %s: %w", key, err)
	}

	return s.Set(ctx, key, string(data))
}
