// Package postgres keeps storefront state in a single key-value table.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/XSAM/otelsql"
	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/aaravmahajanofficial/storefront/internal/utils"

	_ "github.com/lib/pq"
)

const schema = `
	CREATE TABLE IF NOT EXISTS storefront_state (
		namespace  TEXT NOT NULL,
		key        TEXT NOT NULL,
		value      TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (namespace, key)
	)`

type Store struct {
	DB        *sql.DB
	namespace string
}

// Open connects through an instrumented driver, checks the connection and
// makes sure the state table exists.
func Open(ctx context.Context, cfg config.Database, namespace string) (*Store, error) {

	db, err := otelsql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(2)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := New(db, namespace)
	if err := store.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func New(db *sql.DB, namespace string) *Store {
	return &Store{DB: db, namespace: namespace}
}

func (p *Store) EnsureSchema(ctx context.Context) error {
	dbCtx, cancel := utils.WithStorageTimeout(ctx)
	defer cancel()

	if _, err := p.DB.ExecContext(dbCtx, schema); err != nil {
		return fmt.Errorf("failed to create state table: %w", err)
	}

	return nil
}

func (p *Store) Get(ctx context.Context, key string) (string, bool, error) {
	dbCtx, cancel := utils.WithStorageTimeout(ctx)
	defer cancel()

	query := `
		SELECT value
		FROM storefront_state
		WHERE namespace = $1 AND key = $2
	`

	var value string

	err := p.DB.QueryRowContext(dbCtx, query, p.namespace, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("querying state %s: %w", key, err)
	}

	return value, true, nil
}

func (p *Store) Set(ctx context.Context, key, value string) error {
	dbCtx, cancel := utils.WithStorageTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO storefront_state (namespace, key, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`

	if _, err := p.DB.ExecContext(dbCtx, query, p.namespace, key, value); err != nil {
		return fmt.Errorf("failed to store state %s: %w", key, err)
	}

	return nil
}

func (p *Store) Remove(ctx context.Context, key string) error {
	dbCtx, cancel := utils.WithStorageTimeout(ctx)
	defer cancel()

	query := `
		DELETE FROM storefront_state
		WHERE namespace = $1 AND key = $2
	`

	if _, err := p.DB.ExecContext(dbCtx, query, p.namespace, key); err != nil {
		return fmt.Errorf("failed to remove state %s: %w", key, err)
	}

	return nil
}

func (p *Store) Close() error {
	return p.DB.Close()
}
