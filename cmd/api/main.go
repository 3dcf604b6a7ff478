package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kgms-backend/infrastructure/config"
	"kgms-backend/infrastructure/di"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	startupPingTimeout = 10 * time.Second
	shutdownTimeout    = 30 * time.Second
)

func main() {
	// missing store settings never reach the container
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "kgms-backend: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, cleanup, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize container: %w", err)
	}
	defer cleanup()
	logger := container.Logger
	defer logger.Sync()

	pingCtx, cancel := context.WithTimeout(ctx, startupPingTimeout)
	if err := container.Ping(pingCtx); err != nil {
		logger.Warn("Graph store not reachable yet", zap.String("store", cfg.StoreBackend), zap.Error(err))
	}
	cancel()

	if watcher, err := config.NewWatcher(cfg, logger); err != nil {
		logger.Warn("Configuration watcher unavailable", zap.Error(err))
	} else {
		watcher.OnChange(container.ApplyReload)
		defer watcher.Stop()
	}

	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           container.Handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Knowledge graph API listening",
			zap.String("address", cfg.ServerAddress),
			zap.String("environment", cfg.Environment),
			zap.String("store", cfg.StoreBackend),
			zap.String("allowed_origin", cfg.CORSOrigin()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
