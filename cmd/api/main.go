package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inreader-backend/internal/bootstrap"
	"inreader-backend/internal/shared/config"
	"inreader-backend/internal/shared/server"
	"inreader-backend/internal/shared/telemetry"
)

const readHeaderTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		telemetry.Error("api.exit", map[string]any{"error": err})
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	telemetry.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.BuildContext(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			telemetry.Warn("api.close", map[string]any{"error": err})
		}
	}()

	srv := &http.Server{
		Addr:              server.Addr(cfg.Port),
		Handler:           app.Router,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		telemetry.Info("api.listening", map[string]any{"addr": srv.Addr, "env": cfg.Env})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	telemetry.Info("api.shutdown", map[string]any{"timeout": cfg.ShutdownTimeout.String()})
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	// in-flight transcription runs finish before the database goes away
	if err := app.Pipeline.Wait(shutdownCtx); err != nil {
		telemetry.Warn("api.pipeline_abandoned", map[string]any{"error": err})
	}
	return nil
}
