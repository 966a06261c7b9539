// Package main is the entrypoint for the mediapress API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kiranshivaraju/mediapress/internal/api"
	"github.com/kiranshivaraju/mediapress/internal/api/handler"
	"github.com/kiranshivaraju/mediapress/internal/api/response"
	"github.com/kiranshivaraju/mediapress/internal/config"
	"github.com/kiranshivaraju/mediapress/internal/imaging"
	"github.com/kiranshivaraju/mediapress/internal/job"
	"github.com/kiranshivaraju/mediapress/internal/retention"
	"github.com/kiranshivaraju/mediapress/internal/transcode"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config — fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Bootstrap the storage folders
	for _, dir := range []string{cfg.Storage.UploadDir, cfg.Storage.DownloadDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	// 3. Resolve the external encoder; no submission can succeed without it
	transcoder, err := transcode.New(cfg.FFmpeg.FFmpegPath, cfg.FFmpeg.FFprobePath)
	if err != nil {
		return fmt.Errorf("resolve encoder: %w", err)
	}
	slog.Info("encoder resolved")

	// 4. Build the orchestrator
	registry := job.NewRegistry()
	svc := job.NewService(
		registry,
		transcoder,
		imaging.NewCompressor(),
		imaging.IsImage,
		cfg.Storage.UploadDir,
		cfg.Storage.DownloadDir,
	)

	// 5. Build router with dependencies
	deps := api.Dependencies{
		HealthHandler:   healthHandler(),
		StartHandler:    handler.NewStartHandler(svc, cfg.Storage.MaxUploadBytes),
		ProgressHandler: handler.NewProgressHandler(svc),
		DownloadHandler: handler.NewDownloadHandler(svc),
		CancelHandler:   handler.NewCancelHandler(svc),
	}
	router := api.NewRouter(deps)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     router,
		ReadTimeout: 15 * time.Minute, // large uploads arrive slowly
		IdleTimeout: 60 * time.Second,
	}

	// 6. Run the server and the retention sweeper as one group
	sweeper := retention.New(cfg.Storage.DownloadDir, cfg.Retention.MaxAge, cfg.Retention.SweepInterval)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := sweeper.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("retention sweeper: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutdown signal received, draining connections...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("server stopped gracefully")
	return nil
}

// healthHandler reports liveness. Encoder availability is checked at startup;
// a running server implies the encoder was resolved.
func healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, map[string]any{
			"status": "ok",
			"ffmpeg": "ok",
		})
	}
}
