package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alfredjeanlab/cardwall/internal/config"
	"github.com/alfredjeanlab/cardwall/internal/events"
	"github.com/alfredjeanlab/cardwall/internal/server"
	"github.com/alfredjeanlab/cardwall/internal/store/postgres"
	cardsync "github.com/alfredjeanlab/cardwall/internal/sync"
	"github.com/spf13/cobra"
)

const shutdownGrace = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Start the Cardwall server",
	GroupID: "system",
	// Override PersistentPreRunE so we don't create a client connection.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		slog.SetDefault(logger)

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		store, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return err
		}

		publisher, err := newPublisher(cfg, logger)
		if err != nil {
			store.Close()
			return err
		}

		cardwallServer := server.NewCardwallServer(store, publisher)
		cardwallServer.Presence.StartReaper(nil)

		handler := cardwallServer.NewHTTPHandler(cfg.AuthToken)
		handler = server.RecoveryMiddleware(server.LoggingMiddleware(handler))
		httpServer := &http.Server{
			Addr:    cfg.HTTPAddr,
			Handler: handler,
		}
		go func() {
			logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("HTTP server error", "err", err)
			}
		}()

		scheduler := startSnapshots(cfg, store, logger)

		logger.Info("cardwall server started", "http_addr", cfg.HTTPAddr)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		<-ctx.Done()
		logger.Info("shutting down")

		if scheduler != nil {
			scheduler.Stop()
			logger.Info("sync scheduler stopped")
		}
		cardwallServer.Presence.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "err", err)
		}
		logger.Info("HTTP server stopped")

		if err := publisher.Close(); err != nil {
			logger.Error("error closing publisher", "err", err)
		}
		if err := store.Close(); err != nil {
			logger.Error("error closing store", "err", err)
		}
		logger.Info("shutdown complete")
		return nil
	},
}

// newPublisher returns a NATS-backed publisher when CARDWALL_NATS_URL is
// set and the no-op publisher otherwise. SSE clients are fed either way.
func newPublisher(cfg *config.Config, logger *slog.Logger) (events.Publisher, error) {
	if cfg.NATSURL == "" {
		logger.Info("events disabled (CARDWALL_NATS_URL not set)")
		return &events.NoopPublisher{}, nil
	}
	pub, err := events.NewNATSPublisher(cfg.NATSURL)
	if err != nil {
		return nil, err
	}
	logger.Info("events enabled", "nats_url", cfg.NATSURL)
	return pub, nil
}

// startSnapshots wires the periodic snapshot exporter when a bucket and
// interval are configured. Returns nil when snapshots are off.
func startSnapshots(cfg *config.Config, store *postgres.PostgresStore, logger *slog.Logger) *cardsync.Scheduler {
	if cfg.SyncInterval <= 0 || cfg.SyncS3Bucket == "" {
		return nil
	}
	s3Dest, err := cardsync.NewS3Destination(
		context.Background(),
		cfg.SyncS3Bucket,
		cfg.SyncS3Key,
		cfg.SyncS3Region,
		cfg.SyncS3Endpoint,
	)
	if err != nil {
		logger.Error("failed to create S3 sync destination", "err", err)
		return nil
	}
	scheduler := cardsync.NewScheduler(store, []cardsync.Destination{s3Dest}, cfg.SyncInterval, logger)
	scheduler.Start()
	logger.Info("sync scheduler started",
		"interval", cfg.SyncInterval,
		"bucket", cfg.SyncS3Bucket,
		"key", cfg.SyncS3Key,
	)
	return scheduler
}
