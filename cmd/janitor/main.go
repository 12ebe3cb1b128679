package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/your-org/watchdog/internal/config"
	"github.com/your-org/watchdog/internal/janitor"
	"github.com/your-org/watchdog/internal/observability"
	"github.com/your-org/watchdog/internal/storage"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run a single sweep and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	observability.SetupLogger(cfg.Logging.Level, cfg.Logging.Format)

	db, err := storage.NewPostgresStore(cfg.Database)
	if err != nil {
		slog.Error("connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	minioStore, err := storage.NewMinIOStore(cfg.MinIO)
	if err != nil {
		slog.Error("connect to minio", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sweeper := janitor.NewSweeper(db, minioStore, cfg.Janitor)

	if *once {
		n, err := sweeper.Sweep(ctx)
		if err != nil {
			slog.Error("sweep failed", "error", err)
			os.Exit(1)
		}
		slog.Info("sweep finished", "swept", n)
		return
	}

	if err := sweeper.Run(ctx); err != nil && ctx.Err() == nil {
		slog.Error("janitor error", "error", err)
		os.Exit(1)
	}
	slog.Info("janitor stopped")
}
