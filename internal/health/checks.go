package health

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/hellofresh/health-go/v5"
	"github.com/hellofresh/health-go/v5/checks/postgres"
	healthRedis "github.com/hellofresh/health-go/v5/checks/redis"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// New builds the health checker for the shop service and whichever storage
// backend cfg selects.
func New(cfg *config.Config, api Pinger) (*health.Health, error) {
	checks := []health.Config{
		{
			Name:      "shop-api",
			Timeout:   5 * time.Second,
			SkipOnErr: false,
			Check:     api.Ping,
		},
	}

	switch cfg.Storage.Backend {
	case "redis":
		checks = append(checks, health.Config{
			Name:      "redis",
			Timeout:   2 * time.Second,
			SkipOnErr: false,
			Check: healthRedis.New(healthRedis.Config{
				DSN: cfg.RedisConnect.GetDSN(),
			}),
		})
	case "postgres":
		checks = append(checks, health.Config{
			Name:      "database",
			Timeout:   3 * time.Second,
			SkipOnErr: false,
			Check: postgres.New(postgres.Config{
				DSN: cfg.Database.GetDSN(),
			}),
		})
	case "file":
		checks = append(checks, health.Config{
			Name:      "state-file",
			Timeout:   time.Second,
			SkipOnErr: false,
			Check:     stateDirCheck(cfg.Storage.Path),
		})
	}

	checks = append(checks, health.Config{
		Name:      "downloads",
		Timeout:   time.Second,
		SkipOnErr: true,
		Check:     dirCheck(cfg.Downloads.Dir),
	})

	h, err := health.New(
		health.WithComponent(health.Component{
			Name:    "storefront",
			Version: "1.0.0",
		}),
		health.WithSystemInfo(),
		health.WithChecks(checks...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create health instance: %w", err)
	}

	return h, nil
}

func stateDirCheck(path string) health.CheckFunc {
	return dirCheck(filepath.Dir(path))
}

// dirCheck passes when dir exists as a directory or does not exist yet.
func dirCheck(dir string) health.CheckFunc {
	return func(context.Context) error {
		info, err := os.Stat(dir)
		if os.IsNotExist(err) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("cannot stat %s: %w", dir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", dir)
		}

		return nil
	}
}
