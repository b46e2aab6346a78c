package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketplace_backend/internal/adapters"
	"marketplace_backend/internal/adapters/storage"
	"marketplace_backend/internal/aipipeline"
	"marketplace_backend/internal/catalog"
	"marketplace_backend/internal/enhancement"
	"marketplace_backend/internal/scheduler"
	"marketplace_backend/platform/config"
	"marketplace_backend/platform/db"
	"marketplace_backend/platform/logger"
	"marketplace_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting ai worker", "env", cfg.Env, "queue", cfg.GetAsynqQueueName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	storageSvc, err := storage.NewMinIOService(cfg)
	if err != nil {
		log.Error("failed to initialize storage service", "error", err)
		panic("failed to initialize storage service: " + err.Error())
	}

	pipeline, err := aipipeline.Build(ctx, cfg, storageSvc, log)
	if err != nil {
		log.Error("failed to initialize ai pipeline", "error", err)
		panic("failed to initialize ai pipeline: " + err.Error())
	}

	// Worker-side wiring (no HTTP handlers required). The worker relies on
	// asynq uniqueness instead of the inflight guard.
	catalogModule := catalog.NewModule(pool, storageSvc, nil, validator.New(), log)
	enhancementModule := enhancement.NewModule(pool, enhancement.Deps{
		Products:  adapters.NewCatalogProductReader(catalogModule.Repository()),
		Enhancer:  pipeline.Enhancer,
		Suggester: pipeline.Suggester,
		Fetcher:   pipeline.Fetcher,
	}, validator.New(), log)

	worker, err := scheduler.NewWorker(cfg, enhancementModule.Service(), log)
	if err != nil {
		log.Error("failed to initialize ai worker", "error", err)
		panic("failed to initialize ai worker: " + err.Error())
	}

	worker.Run(ctx)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
