// Package app wires configuration, storage and services into one object.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aaravmahajanofficial/storefront/internal/auth"
	"github.com/aaravmahajanofficial/storefront/internal/cart"
	"github.com/aaravmahajanofficial/storefront/internal/catalog"
	"github.com/aaravmahajanofficial/storefront/internal/client"
	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/aaravmahajanofficial/storefront/internal/guard"
	"github.com/aaravmahajanofficial/storefront/internal/invoice"
	"github.com/aaravmahajanofficial/storefront/internal/order"
	"github.com/aaravmahajanofficial/storefront/internal/session"
	"github.com/aaravmahajanofficial/storefront/internal/storage"
	"github.com/aaravmahajanofficial/storefront/internal/storage/file"
	"github.com/aaravmahajanofficial/storefront/internal/storage/memory"
	"github.com/aaravmahajanofficial/storefront/internal/storage/postgres"
	storeRedis "github.com/aaravmahajanofficial/storefront/internal/storage/redis"
	"github.com/aaravmahajanofficial/storefront/internal/telemetry"
)

type App struct {
	Config   *config.Config
	Storage  storage.Store
	Client   *client.Client
	Sessions *session.Store
	Cart     *cart.Engine
	Catalog  *catalog.Service
	Invoices *invoice.Service
	Orders   *order.Submitter
	Auth     *auth.Service
	Guard    *guard.Guard

	shutdownTracing telemetry.ShutdownFunc
}

// New opens the configured storage backend and builds every service on top
// of it. Close releases what New opened.
func New(ctx context.Context, cfg *config.Config, opts ...client.Option) (*App, error) {
	kv, err := OpenStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	shutdown, err := telemetry.Setup(ctx, cfg.Otel)
	if err != nil {
		kv.Close()
		return nil, err
	}

	return Build(cfg, kv, client.New(cfg.API, opts...), shutdown), nil
}

// Build assembles the services over an already opened store.
func Build(cfg *config.Config, kv storage.Store, api *client.Client, shutdown telemetry.ShutdownFunc) *App {
	surface := cfg.SurfaceFetchErrors()

	sessions := session.NewStore(kv)
	engine := cart.NewEngine(cart.NewStore(kv))

	return &App{
		Config:          cfg,
		Storage:         kv,
		Client:          api,
		Sessions:        sessions,
		Cart:            engine,
		Catalog:         catalog.NewService(api, sessions, surface),
		Invoices:        invoice.NewService(api, sessions, surface),
		Orders:          order.NewSubmitter(api, sessions, engine, invoice.NewSaver(cfg.Downloads.Dir)),
		Auth:            auth.NewService(api, sessions),
		Guard:           guard.New(sessions),
		shutdownTracing: shutdown,
	}
}

func OpenStorage(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	slog.Debug("Opening storage", slog.String("backend", cfg.Storage.Backend))

	switch cfg.Storage.Backend {
	case "memory":
		return memory.New(), nil
	case "file":
		return file.New(cfg.Storage.Path)
	case "redis":
		rdb, err := storeRedis.NewClient(cfg.RedisConnect)
		if err != nil {
			return nil, err
		}
		return storeRedis.New(rdb, cfg.Storage.Namespace), nil
	case "postgres":
		return postgres.Open(ctx, cfg.Database, cfg.Storage.Namespace)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func (a *App) Close(ctx context.Context) error {
	var errs []error

	if a.shutdownTracing != nil {
		if err := a.shutdownTracing(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracing shutdown: %w", err))
		}
	}

	if err := a.Storage.Close(); err != nil {
		errs = append(errs, fmt.Errorf("storage close: %w", err))
	}

	return errors.Join(errs...)
}
