package session

import (
	"context"
	"log/slog"

	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/events"
	"github.com/aaravmahajanofficial/storefront/internal/logging"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/storage"
)

// Store holds the auth token and role. There is no expiry: a token stays
// until Clear is called.
type Store struct {
	kv      storage.Store
	changes *events.Broadcaster[*models.Session]
}

func NewStore(kv storage.Store) *Store {
	return &Store{
		kv:      kv,
		changes: events.NewBroadcaster[*models.Session](),
	}
}

func (s *Store) Set(ctx context.Context, token string, role models.Role) error {
	if err := s.kv.Set(ctx, storage.TokenKey, token); err != nil {
		return appErrors.StorageError("Failed to save session").WithError(err)
	}

	if err := s.kv.Set(ctx, storage.RoleKey, string(role)); err != nil {
		// a token without its role would read back as a signed-in Customer
		if rmErr := s.kv.Remove(ctx, storage.TokenKey); rmErr != nil {
			logging.FromContext(ctx).Error("Failed to roll back session token", slog.String("error", rmErr.Error()))
		}
		return appErrors.StorageError("Failed to save session").WithError(err)
	}

	logging.FromContext(ctx).Debug("Session stored", slog.String("role", string(role)))
	s.changes.Publish(&models.Session{Token: token, Role: role})

	return nil
}

// Get returns nil when no token is stored.
func (s *Store) Get(ctx context.Context) (*models.Session, error) {
	token, found, err := s.kv.Get(ctx, storage.TokenKey)
	if err != nil {
		return nil, appErrors.StorageError("Failed to read session").WithError(err)
	}

	if !found || token == "" {
		return nil, nil
	}

	role, _, err := s.kv.Get(ctx, storage.RoleKey)
	if err != nil {
		return nil, appErrors.StorageError("Failed to read session").WithError(err)
	}

	return &models.Session{Token: token, Role: models.Role(role)}, nil
}

// Clear signs the user out. The token goes first: once it is gone there is
// no session, and a leftover role is ignored by Get and replaced by the next Set.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Remove(ctx, storage.TokenKey); err != nil {
		return appErrors.StorageError("Failed to clear session").WithError(err)
	}

	if err := s.kv.Remove(ctx, storage.RoleKey); err != nil {
		logging.FromContext(ctx).Warn("Stale session role left behind", slog.String("error", err.Error()))
	}

	s.changes.Publish(nil)

	return nil
}

// Subscribe is notified with the new session (nil after Clear).
func (s *Store) Subscribe(fn func(*models.Session)) func() {
	return s.changes.Subscribe(fn)
}

// HasToken and Role satisfy guard.SessionQuerier.

func (s *Store) HasToken(ctx context.Context) (bool, error) {
	sess, err := s.Get(ctx)
	if err != nil {
		return false, err
	}

	return sess != nil, nil
}

func (s *Store) Role(ctx context.Context) (models.Role, error) {
	sess, err := s.Get(ctx)
	if err != nil || sess == nil {
		return "", err
	}

	return sess.Role, nil
}
