package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	videoanalytics "video-analytics/agents/video-analytics"
	"video-analytics/internal/store"
	"video-analytics/shared/ai"
	"video-analytics/shared/config"
	"video-analytics/shared/logging"
	"video-analytics/shared/monitoring"
	"video-analytics/shared/storage"
)

// app holds everything a command may need. Optional parts are nil when
// not requested or not configured.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   *store.Store
	cache   *storage.DocumentCache
	monitor *monitoring.Monitor
	agent   *videoanalytics.Agent
}

type needs struct {
	model bool
	// store fails the command when the store is not configured.
	store bool
	// optionalStore connects when configured and continues without it otherwise.
	optionalStore bool
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath, true)
	}
	return config.Load()
}

func newApp(ctx context.Context, n needs) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.New(cfg.Logging, verbose)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger, monitor: monitoring.NewMonitor(logger.Named("monitor"))}

	if n.store || n.optionalStore {
		if err := cfg.RequireStore(); err != nil {
			if n.store {
				a.close()
				return nil, err
			}
			logger.Warn("store is not configured, only uploaded documents can be queried")
		} else {
			st, err := store.Open(ctx, cfg.Store, logger.Named("store"))
			if err != nil {
				a.close()
				return nil, fmt.Errorf("failed to connect to store: %w", err)
			}
			a.store = st
		}
	}

	cache, err := storage.NewDocumentCache(cfg.FileMode.CacheDir)
	if err != nil {
		logger.Warn("document cache disabled", zap.String("dir", cfg.FileMode.CacheDir), zap.Error(err))
	} else {
		a.cache = cache
	}

	var model ai.Model
	if n.model {
		if err := cfg.RequireModel(); err != nil {
			a.close()
			return nil, err
		}
		model, err = ai.NewModel(ctx, &cfg.AI)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("failed to create model client: %w", err)
		}
	}

	a.agent = videoanalytics.New(cfg, model, a.store, a.cache, a.monitor, logger)
	return a, nil
}

// questionContext bounds how long one question waits for the model.
func (a *app) questionContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.cfg.AI.Timeout)
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("failed to close store", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
