package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/your-org/watchdog/internal/analyzer"
	"github.com/your-org/watchdog/internal/config"
	"github.com/your-org/watchdog/internal/notify"
	"github.com/your-org/watchdog/internal/observability"
	"github.com/your-org/watchdog/internal/queue"
	"github.com/your-org/watchdog/internal/storage"
	"github.com/your-org/watchdog/internal/vision"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	taskID := flag.Int64("task", 0, "process a single task and exit (used internally)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	observability.SetupLogger(cfg.Logging.Level, cfg.Logging.Format)

	if *taskID > 0 {
		if err := runTask(cfg, *taskID); err != nil {
			slog.Error("task failed", "task_id", *taskID, "error", err)
			os.Exit(1)
		}
		return
	}

	runDispatcher(cfg, *configPath)
}

// runTask is the isolated worker mode: fresh connections, one task, exit.
// The dispatcher re-execs this binary with -task so a crash in image
// decoding or the ONNX runtime takes down only this process.
func runTask(cfg *config.Config, taskID int64) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := storage.NewPostgresStore(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer db.Close()

	minioStore, err := storage.NewMinIOStore(cfg.MinIO)
	if err != nil {
		return fmt.Errorf("connect to minio: %w", err)
	}

	if err := vision.InitRuntime(); err != nil {
		return fmt.Errorf("init onnx runtime: %w", err)
	}
	defer vision.DestroyRuntime()

	extractor, err := vision.NewONNXExtractor(cfg.Vision)
	if err != nil {
		return fmt.Errorf("init extractor: %w", err)
	}
	defer extractor.Close()

	pusher, err := notify.NewPusher(ctx, cfg.Firebase.CredentialsFile)
	if err != nil {
		return fmt.Errorf("init pusher: %w", err)
	}

	// Live capture events are best-effort; the worker still completes the
	// task when NATS is down.
	var publisher analyzer.Publisher
	producer, err := queue.NewProducer(cfg.NATS.URL)
	if err != nil {
		slog.Warn("connect to nats", "error", err)
	} else {
		defer producer.Close()
		if err := producer.EnsureStream(ctx); err != nil {
			slog.Warn("ensure nats stream", "error", err)
		}
		publisher = producer
	}

	processor := analyzer.NewProcessor(analyzer.ProcessorConfig{
		Tasks:       db,
		Eligibility: db,
		Objects:     minioStore,
		Extractor:   extractor,
		Notifier:    notify.NewService(db, pusher),
		Publisher:   publisher,
		Tolerance:   cfg.Analyzer.Tolerance,
	})

	return processor.Process(ctx, taskID)
}

// runDispatcher is the long-lived mode: poll the backlog and fan each
// batch out to isolated worker processes.
func runDispatcher(cfg *config.Config, configPath string) {
	slog.Info("starting analysis dispatcher",
		"batch_size", cfg.Analyzer.BatchSize,
		"poll_interval", cfg.Analyzer.PollInterval.String(),
	)

	db, err := storage.NewPostgresStore(cfg.Database)
	if err != nil {
		slog.Error("connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Metrics endpoint
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
		slog.Info("dispatcher metrics listening", "addr", ":8082")
		if err := http.ListenAndServe(":8082", mux); err != nil {
			slog.Error("metrics server error", "error", err)
		}
	}()

	// Periodically report backlog depth
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := db.PendingCount(ctx); err == nil {
					observability.BacklogDepth.Set(float64(n))
				}
			}
		}
	}()

	runner := &analyzer.ExecRunner{
		ConfigPath: configPath,
		Timeout:    cfg.Analyzer.WorkerTimeout,
	}

	dispatcher := analyzer.NewDispatcher(db, runner, cfg.Analyzer)
	if err := dispatcher.Run(ctx); err != nil && ctx.Err() == nil {
		slog.Error("dispatcher error", "error", err)
		os.Exit(1)
	}

	slog.Info("dispatcher stopped")
}
