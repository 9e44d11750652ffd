// Package app initializes and holds long-lived application services, acting
// as a dependency injection container.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ldes-tools/harvester/internal/config"
	"github.com/ldes-tools/harvester/internal/logging"
	"github.com/ldes-tools/harvester/internal/notify"
	"github.com/ldes-tools/harvester/internal/registry"
	"github.com/ldes-tools/harvester/internal/storage"
)

// logFilename is the log file kept inside the cache directory.
const logFilename = "harvester.log"

// App holds the shared, long-lived services for one harvester invocation:
// the logger, the artifact store, and the optional registry and notifier.
// It is initialized once at startup and passed to the components that need
// it. Initialization fails fast if any configured service is unreachable.
type App struct {
	cfg      config.Config
	logger   *zap.Logger
	storage  storage.Provider
	registry registry.Provider
	notifier notify.Provider
}

// New creates and initializes an App from configuration. Creating the cache
// directory is the only hard local dependency; a failure there is fatal.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := os.MkdirAll(cfg.CacheDir, 0o750); err != nil {
		return nil, fmt.Errorf("create cache dir %s: %w", cfg.CacheDir, err)
	}

	logger, err := logging.New(cfg.Logging.Development, filepath.Join(cfg.CacheDir, logFilename))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	var store storage.Provider
	switch cfg.Storage.Provider {
	case "fs":
		store, err = storage.NewFSProvider(cfg.CacheDir)
		if err != nil {
			return nil, fmt.Errorf("init artifact storage: %w", err)
		}
	case "gcs":
		logger.Info("Using GCS artifact storage", zap.String("bucket", cfg.Storage.GCSBucket))
		store, err = storage.NewGCSProvider(ctx, cfg.Storage.GCSBucket)
		if err != nil {
			return nil, fmt.Errorf("init artifact storage: %w", err)
		}
	case "noop":
		logger.Info("Using no-op artifact storage, members will be discarded")
		store = storage.NoOpProvider{}
	default:
		return nil, fmt.Errorf("unknown storage provider: %s", cfg.Storage.Provider)
	}

	var reg registry.Provider
	switch cfg.Registry.Provider {
	case "postgres":
		logger.Info("Connecting to harvest registry")
		reg, err = registry.NewPostgresProvider(ctx, cfg.Registry.DSN)
		if err != nil {
			return nil, fmt.Errorf("init registry: %w", err)
		}
	case "noop":
		reg = registry.NoOpProvider{}
	default:
		return nil, fmt.Errorf("unknown registry provider: %s", cfg.Registry.Provider)
	}

	var notifier notify.Provider
	switch cfg.Notify.Provider {
	case "pubsub":
		logger.Info("Connecting to Pub/Sub", zap.String("topic", cfg.Notify.TopicID))
		notifier, err = notify.NewPubSubProvider(ctx, cfg.Notify.ProjectID, cfg.Notify.TopicID)
		if err != nil {
			return nil, fmt.Errorf("init notifier: %w", err)
		}
	case "noop":
		notifier = notify.NoOpProvider{}
	default:
		return nil, fmt.Errorf("unknown notify provider: %s", cfg.Notify.Provider)
	}

	return &App{
		cfg:      cfg,
		logger:   logger,
		storage:  store,
		registry: reg,
		notifier: notifier,
	}, nil
}

// Logger returns the shared zap logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Storage exposes the configured artifact store.
func (a *App) Storage() storage.Provider {
	return a.storage
}

// Registry exposes the configured harvest registry.
func (a *App) Registry() registry.Provider {
	return a.registry
}

// Notifier exposes the configured notifier.
func (a *App) Notifier() notify.Provider {
	return a.notifier
}

// Close shuts down services gracefully.
func (a *App) Close() {
	if err := a.notifier.Close(); err != nil {
		a.logger.Warn("Failed to close notifier", zap.Error(err))
	}
	if err := a.registry.Close(); err != nil {
		a.logger.Warn("Failed to close registry", zap.Error(err))
	}
	_ = a.logger.Sync()
}
