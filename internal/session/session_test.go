package session_test

import (
	"context"
	"errors"
	"testing"

	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/session"
	"github.com/aaravmahajanofficial/storefront/internal/storage"
	"github.com/aaravmahajanofficial/storefront/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	*memory.Store
	err error
}

func (f *failingStore) Get(context.Context, string) (string, bool, error) { return "", false, f.err }
func (f *failingStore) Set(context.Context, string, string) error         { return f.err }
func (f *failingStore) Remove(context.Context, string) error              { return f.err }

// keyFailingStore fails writes and removals of a single key.
type keyFailingStore struct {
	*memory.Store
	key string
	err error
}

func (f *keyFailingStore) Set(ctx context.Context, key, value string) error {
	if key == f.key {
		return f.err
	}
	return f.Store.Set(ctx, key, value)
}

func (f *keyFailingStore) Remove(ctx context.Context, key string) error {
	if key == f.key {
		return f.err
	}
	return f.Store.Remove(ctx, key)
}

func TestStore(t *testing.T) {
	ctx := testContext(t)

	t.Run("Absent session", func(t *testing.T) {
		store := session.NewStore(memory.New())

		sess, err := store.Get(ctx)

		require.NoError(t, err)
		assert.Nil(t, sess)

		ok, err := store.HasToken(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Set then Get", func(t *testing.T) {
		// Arrange
		kv := memory.New()
		store := session.NewStore(kv)

		// Act
		require.NoError(t, store.Set(ctx, "jwt-token", models.RoleAdministrator))
		sess, err := store.Get(ctx)

		// Assert
		require.NoError(t, err)
		require.NotNil(t, sess)
		assert.Equal(t, "jwt-token", sess.Token)
		assert.Equal(t, models.RoleAdministrator, sess.Role)

		raw, _, _ := kv.Get(ctx, storage.RoleKey)
		assert.Equal(t, "Administrator", raw, "role kept under the userType key")

		role, err := store.Role(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdministrator, role)
	})

	t.Run("Writes are visible to a second store on the same storage", func(t *testing.T) {
		kv := memory.New()
		writer := session.NewStore(kv)
		reader := session.NewStore(kv)

		require.NoError(t, writer.Set(ctx, "t1", models.RoleCustomer))
		sess, err := reader.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "t1", sess.Token)

		require.NoError(t, writer.Clear(ctx))
		sess, err = reader.Get(ctx)
		require.NoError(t, err)
		assert.Nil(t, sess)
	})

	t.Run("Clear notifies subscribers", func(t *testing.T) {
		// Arrange
		store := session.NewStore(memory.New())
		var seen []*models.Session
		store.Subscribe(func(s *models.Session) { seen = append(seen, s) })

		// Act
		require.NoError(t, store.Set(ctx, "t", models.RoleCustomer))
		require.NoError(t, store.Clear(ctx))
		require.NoError(t, store.Clear(ctx))

		// Assert
		require.Len(t, seen, 3)
		assert.Equal(t, "t", seen[0].Token)
		assert.Nil(t, seen[1])
	})

	t.Run("Failure - Storage error", func(t *testing.T) {
		storageErr := errors.New("disk gone")
		store := session.NewStore(&failingStore{Store: memory.New(), err: storageErr})

		_, err := store.Get(ctx)
		require.Error(t, err)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeStorage))
		assert.ErrorIs(t, err, storageErr)

		assert.Error(t, store.Set(ctx, "t", models.RoleCustomer))
		assert.Error(t, store.Clear(ctx))
	})

	t.Run("Failure - Role write rolls back the token", func(t *testing.T) {
		// Arrange
		kv := &keyFailingStore{Store: memory.New(), key: storage.RoleKey, err: errors.New("disk full")}
		store := session.NewStore(kv)
		var published int
		store.Subscribe(func(*models.Session) { published++ })

		// Act
		err := store.Set(ctx, "tok", models.RoleAdministrator)

		// Assert
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeStorage))

		sess, err := store.Get(ctx)
		require.NoError(t, err)
		assert.Nil(t, sess)
		assert.Zero(t, published)
	})

	t.Run("Clear succeeds once the token is gone", func(t *testing.T) {
		// Arrange
		mem := memory.New()
		require.NoError(t, session.NewStore(mem).Set(ctx, "tok", models.RoleCustomer))
		store := session.NewStore(&keyFailingStore{Store: mem, key: storage.RoleKey, err: errors.New("disk full")})
		var got []*models.Session
		store.Subscribe(func(s *models.Session) { got = append(got, s) })

		// Act
		err := store.Clear(ctx)

		// Assert
		require.NoError(t, err)
		sess, err := store.Get(ctx)
		require.NoError(t, err)
		assert.Nil(t, sess)
		assert.Equal(t, []*models.Session{nil}, got)
	})

	t.Run("Failure - Token removal keeps the session", func(t *testing.T) {
		mem := memory.New()
		require.NoError(t, session.NewStore(mem).Set(ctx, "tok", models.RoleCustomer))
		store := session.NewStore(&keyFailingStore{Store: mem, key: storage.TokenKey, err: errors.New("disk full")})

		err := store.Clear(ctx)

		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeStorage))
		sess, err := store.Get(ctx)
		require.NoError(t, err)
		require.NotNil(t, sess)
		assert.Equal(t, models.RoleCustomer, sess.Role)
	})
}
