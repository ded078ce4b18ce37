package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/app"
	"github.com/aaravmahajanofficial/storefront/internal/config"
	storehealth "github.com/aaravmahajanofficial/storefront/internal/health"
	"github.com/aaravmahajanofficial/storefront/internal/logging"
	"github.com/aaravmahajanofficial/storefront/internal/metrics"
	"github.com/aaravmahajanofficial/storefront/internal/view"
	"github.com/google/uuid"
	"github.com/hellofresh/health-go/v5"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to the YAML config file (defaults to $CONFIG_PATH)")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		return 2
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		return 1
	}

	// Logger setup, stdout belongs to the screens
	logger := logging.New(cfg.Log, os.Stderr).With(
		slog.String("session_id", uuid.NewString()),
		slog.String("env", cfg.Env),
	)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.WithLogger(ctx, logger)

	a, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("❌ Error opening storage", slog.String("backend", cfg.Storage.Backend), slog.String("error", err.Error()))
		return 1
	}

	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := a.Close(closeCtx); err != nil {
			slog.Error("⚠️ Error closing storefront", slog.String("error", err.Error()))
		}
	}()

	switch args[0] {
	case "shell":
		if err := view.New(a, os.Stdout).RunShell(ctx, os.Stdin); err != nil {
			slog.Error("Shell stopped", slog.String("error", err.Error()))
			return 1
		}
		return 0
	case "health":
		return checkHealth(ctx, cfg, a)
	case "metrics":
		if err := metrics.WriteText(os.Stdout); err != nil {
			slog.Error("Failed to write metrics", slog.String("error", err.Error()))
			return 1
		}
		return 0
	}

	if !view.IsCommand(args[0]) {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args[0])
		usage()
		return 2
	}

	if err := view.New(a, os.Stdout).Dispatch(ctx, args); err != nil {
		return 1
	}

	return 0
}

func checkHealth(ctx context.Context, cfg *config.Config, a *app.App) int {
	h, err := storehealth.New(cfg, a.Client)
	if err != nil {
		slog.Error("Failed to build health checks", slog.String("error", err.Error()))
		return 1
	}

	check := h.Measure(ctx)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(check); err != nil {
		return 1
	}

	if check.Status != health.StatusOK {
		return 1
	}

	return 0
}

func usage() {
	out := flag.CommandLine.Output()

	fmt.Fprintln(out, "usage: storefront [-config path] <command> [args]")
	fmt.Fprintln(out, "\ncommands:")
	view.Usage(out)
	fmt.Fprintln(out, "  shell")
	fmt.Fprintln(out, "  health")
	fmt.Fprintln(out, "  metrics")
	fmt.Fprintln(out, "\nflags:")
	flag.PrintDefaults()
}
