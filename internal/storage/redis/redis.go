// Package redis keeps storefront state in Redis so several terminals (a kiosk
// fleet, say) can share one session and cart.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/aaravmahajanofficial/storefront/internal/storage"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/redis/go-redis/v9"
)

type Store struct {
	client    *redis.Client
	namespace string
}

func NewClient(cfg config.RedisConnect) (*redis.Client, error) {

	redisURL := cfg.GetDSN()
	slog.Debug("Connecting to Redis", slog.String("host", cfg.Host), slog.String("port", cfg.Port), slog.Int("db", cfg.DB))

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

func New(client *redis.Client, namespace string) *Store {
	return &Store{client: client, namespace: namespace}
}

func (r *Store) key(key string) string {
	return storage.Key(r.namespace, key)
}

func (r *Store) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, cancel := utils.WithStorageTimeout(ctx)
	defer cancel()

	value, err := r.client.Get(ctx, r.key(key)).Result()
	if err != nil {

		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}

		return "", false, fmt.Errorf("failed to get key %s from redis: %w", key, err)
	}

	return value, true, nil
}

// Set stores without expiry: a token stays valid until explicitly cleared.
func (r *Store) Set(ctx context.Context, key, value string) error {
	ctx, cancel := utils.WithStorageTimeout(ctx)
	defer cancel()

	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set key %s in redis: %w", key, err)
	}

	return nil
}

func (r *Store) Remove(ctx context.Context, key string) error {
	ctx, cancel := utils.WithStorageTimeout(ctx)
	defer cancel()

	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete key %s from redis: %w", key, err)
	}

	return nil
}

func (r *Store) Close() error {
	return r.client.Close()
}
