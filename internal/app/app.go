// Package app wires up and runs the application services.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/SurajBakawat-Ra/profiler-visualizer/internal/config"
	"github.com/SurajBakawat-Ra/profiler-visualizer/internal/gpu"
	"github.com/SurajBakawat-Ra/profiler-visualizer/internal/httpserver"
	"github.com/SurajBakawat-Ra/profiler-visualizer/internal/session"
	"github.com/SurajBakawat-Ra/profiler-visualizer/internal/version"
)

const (
	shutdownTimeout   = 10 * time.Second
	sentryFlushWindow = 2 * time.Second
)

// Run bootstraps the application lifecycle.
func Run(ctx context.Context, baseLogger *slog.Logger, cfg config.Config) error {
	appLogger := baseLogger.With("component", "app")

	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Environment,
			Release:     version.Current().Release(),
		})
		if err != nil {
			return fmt.Errorf("init sentry: %w", err)
		}
		defer sentry.Flush(sentryFlushWindow)
		appLogger.Info("error reporting enabled", "environment", cfg.Environment)
	}

	store, err := session.NewStore(cfg.Session.TTL, cfg.Session.MaxEntries, baseLogger)
	if err != nil {
		return fmt.Errorf("init session store: %w", err)
	}

	storeCtx, storeCancel := context.WithCancel(ctx)
	defer storeCancel()

	storeErrCh := make(chan error, 1)
	go func() {
		storeErrCh <- store.Run(storeCtx)
	}()

	srv := httpserver.New(cfg, baseLogger.With("component", "http"), store, gpu.Name)

	appLogger.Info("starting HTTP server",
		"listen_addr", cfg.ListenAddr,
		"max_upload_bytes", cfg.MaxUploadBytes,
		"session_ttl", cfg.Session.TTL,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	for {
		select {
		case err := <-errCh:
			storeCancel()
			if err != nil {
				return err
			}
			return waitStore(storeErrCh)
		case err := <-storeErrCh:
			storeErrCh = nil
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
		case <-ctx.Done():
			appLogger.Info("shutdown initiated", "reason", ctx.Err())

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("http shutdown: %w", err)
			}

			if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}

			storeCancel()
			if err := waitStore(storeErrCh); err != nil {
				return err
			}

			appLogger.Info("shutdown complete")
			return nil
		}
	}
}

func waitStore(errCh <-chan error) error {
	if errCh == nil {
		return nil
	}
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
