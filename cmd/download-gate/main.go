// Package main provides the entry point for the download gate server.
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

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/docuvend/download-gate/internal/access"
	"github.com/docuvend/download-gate/internal/admin"
	"github.com/docuvend/download-gate/internal/api"
	"github.com/docuvend/download-gate/internal/config"
	"github.com/docuvend/download-gate/internal/ipinfo"
	"github.com/docuvend/download-gate/internal/logging"
	"github.com/docuvend/download-gate/internal/metrics"
	"github.com/docuvend/download-gate/internal/storage"
)

const version = "1.0.0"

// components holds everything initialized at startup.
// Separated from main() to enable testing.
type components struct {
	logger       *slog.Logger
	logLevel     *slog.LevelVar
	store        *storage.SQLiteStorage
	publicRouter chi.Router
	adminRouter  chi.Router
	registry     *prometheus.Registry
}

// initializeComponents builds the full service graph from configuration.
func initializeComponents(cfg *config.Config) (*components, error) {
	logLevel := new(slog.LevelVar)
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	logLevel.Set(level)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	store, err := storage.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("storage initialization failed: %w", err)
	}

	registry := prometheus.NewRegistry()
	if err := metrics.Init(registry); err != nil {
		_ = store.Close() //nolint:errcheck
		return nil, fmt.Errorf("metrics initialization failed: %w", err)
	}

	if err := admin.Bootstrap(context.Background(), store, cfg.AdminBootstrapToken); err != nil {
		_ = store.Close() //nolint:errcheck
		return nil, fmt.Errorf("operator token bootstrap failed: %w", err)
	}

	verifier := access.NewVerifier(store, store, logger)
	authorizer := access.NewAuthorizer(store, store, logger)
	reissuer := access.NewReissuanceCoordinator(store, logger)

	publicHandler := api.NewHandler(verifier, authorizer, reissuer, store, logger)
	adminHandler := admin.NewHandler(store, logLevel, logger, cfg.PublicBaseURL)

	return &components{
		logger:       logger,
		logLevel:     logLevel,
		store:        store,
		publicRouter: publicHandler.NewRouter(logger),
		adminRouter:  adminHandler.NewRouter(logger),
		registry:     registry,
	}, nil
}

// logEgressIP asks the configured IP echo service for our public address.
// Best effort: failures are logged and startup continues.
func logEgressIP(ctx context.Context, cfg *config.Config, logger *slog.Logger) {
	if cfg.IPEchoURL == "" {
		return
	}

	client := ipinfo.NewClient(cfg.IPEchoURL, ipinfo.WithHTTPClient(&http.Client{
		Timeout:   10 * time.Second,
		Transport: &ipinfo.LoggingTransport{Logger: logger},
	}))

	lookupCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	ip, err := client.Lookup(lookupCtx)
	if err != nil {
		logger.Warn("egress ip lookup failed", "url", cfg.IPEchoURL, "error", err)
		return
	}
	logger.Info("egress ip", "ip", ip)
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	c, err := initializeComponents(cfg)
	if err != nil {
		return err
	}
	defer c.store.Close() //nolint:errcheck

	c.logger.Info("download gate starting",
		"version", version,
		"listen_addr", cfg.ListenAddr,
		"admin_listen_addr", cfg.AdminListenAddr,
		"metrics_listen_addr", cfg.MetricsListenAddr,
		"database_path", cfg.DatabasePath,
	)

	logEgressIP(context.Background(), cfg, c.logger)

	publicServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           c.publicRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}
	adminServer := &http.Server{
		Addr:              cfg.AdminListenAddr,
		Handler:           c.adminRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}
	metricsServer := &http.Server{
		Addr:              cfg.MetricsListenAddr,
		Handler:           metrics.Handler(c.registry),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 3)
	go func() {
		if err := publicServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("public server failed: %w", err)
		}
	}()
	go func() {
		if err := adminServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("admin server failed: %w", err)
		}
	}()
	go func() {
		if err := metricsServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("metrics server failed: %w", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		c.logger.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	for _, srv := range []*http.Server{publicServer, adminServer, metricsServer} {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			c.logger.Error("server shutdown failed", "addr", srv.Addr, "error", err)
		}
	}

	c.logger.Info("shutdown complete")
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "download-gate: %v\n", err)
		os.Exit(1)
	}
}
