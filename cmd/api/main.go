package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/your-org/watchdog/internal/api"
	"github.com/your-org/watchdog/internal/api/handlers"
	"github.com/your-org/watchdog/internal/api/ws"
	"github.com/your-org/watchdog/internal/config"
	"github.com/your-org/watchdog/internal/models"
	"github.com/your-org/watchdog/internal/notify"
	"github.com/your-org/watchdog/internal/observability"
	"github.com/your-org/watchdog/internal/queue"
	"github.com/your-org/watchdog/internal/storage"
	"github.com/your-org/watchdog/internal/vision"
	"github.com/your-org/watchdog/pkg/dto"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	observability.SetupLogger(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("starting watchdog API service", "port", cfg.Server.Port)

	// Connect to Postgres
	db, err := storage.NewPostgresStore(cfg.Database)
	if err != nil {
		slog.Error("connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Connect to MinIO
	minioStore, err := storage.NewMinIOStore(cfg.MinIO)
	if err != nil {
		slog.Error("connect to minio", "error", err)
		os.Exit(1)
	}
	if err := minioStore.EnsureBucket(context.Background()); err != nil {
		slog.Warn("ensure minio bucket", "error", err)
	}

	// Connect to NATS
	producer, err := queue.NewProducer(cfg.NATS.URL)
	if err != nil {
		slog.Error("connect to nats", "error", err)
		os.Exit(1)
	}
	defer producer.Close()

	if err := producer.EnsureStream(context.Background()); err != nil {
		slog.Warn("ensure nats stream", "error", err)
	}

	// WebSocket hub
	hub := ws.NewHub()
	go hub.Run()

	// Forward analyzed captures from the stream to connected websockets
	consumer, err := queue.NewConsumer(cfg.NATS.URL)
	if err != nil {
		slog.Error("create capture consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err = consumer.ConsumeCaptures(ctx, "api-captures", func(ctx context.Context, msg jetstream.Msg) error {
		var capture models.Capture
		if err := json.Unmarshal(msg.Data(), &capture); err != nil {
			slog.Error("unmarshal capture event", "error", err)
			return nil // Don't retry on unmarshal errors
		}

		hub.BroadcastCapture(&dto.WSCapture{
			Type:     "capture_analyzed",
			CameraID: capture.CameraID,
			Data:     handlers.ToCaptureResponse(capture),
		})
		return nil
	})
	if err != nil {
		slog.Warn("start capture consumer", "error", err)
	}

	// Push notifications for recording-start events
	pusher, err := notify.NewPusher(ctx, cfg.Firebase.CredentialsFile)
	if err != nil {
		slog.Error("init pusher", "error", err)
		os.Exit(1)
	}
	notifier := notify.NewService(db, pusher)

	// ONNX runtime for the face registration endpoint
	var extractor vision.Extractor
	if err := vision.InitRuntime(); err != nil {
		slog.Warn("onnx runtime init failed — face registration will be unavailable", "error", err)
	} else {
		onnx, err := vision.NewONNXExtractor(cfg.Vision)
		if err != nil {
			slog.Warn("extractor init failed — face registration will be unavailable", "error", err)
		} else {
			extractor = onnx
			defer onnx.Close()
			defer vision.DestroyRuntime()
			slog.Info("vision runtime ready for face registration")
		}
	}

	// Setup router
	router := api.NewRouter(api.RouterConfig{
		APIKey:    cfg.Server.APIKey,
		DB:        db,
		MinIO:     minioStore,
		Producer:  producer,
		Hub:       hub,
		Notifier:  notifier,
		Extractor: extractor,
	})

	// Start HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("API server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down API server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("API server stopped")
}
