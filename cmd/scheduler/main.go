package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"claim_contact_backend/internal/adapters"
	"claim_contact_backend/internal/claims"
	"claim_contact_backend/internal/events"
	"claim_contact_backend/internal/scheduler"
	"claim_contact_backend/platform/config"
	"claim_contact_backend/platform/db"
	"claim_contact_backend/platform/logger"
	"claim_contact_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

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

	eventBus := events.NewInMemoryBus(log)

	extractor, closeExtractor := adapters.NewPhoneExtractor(cfg, log)
	defer closeExtractor()

	sources, err := adapters.NewTextSource(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize text sources", "error", err)
		panic("failed to initialize text sources: " + err.Error())
	}
	defer func() { _ = sources.Close() }()

	// Worker-side claims wiring (no HTTP handlers required).
	claimsModule := claims.NewModule(pool, extractor, cfg, validator.New(), log)
	claimsModule.RegisterHandlers(eventBus)
	claimsSvc := claimsModule.Service()
	claimsSvc.SetEventBus(eventBus)
	if sources.Source != nil {
		claimsSvc.SetTextSource(sources.Source)
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize job queue client", "error", err)
		panic("failed to initialize job queue client: " + err.Error())
	}
	defer func() { _ = client.Close() }()
	claimsSvc.SetJobQueue(client)

	sweep := scheduler.NewPendingSweep(claimsSvc, log, cfg.GetPendingSweepInterval(), 0)
	go sweep.Run(ctx)

	worker, err := scheduler.NewWorker(cfg, claimsSvc, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
	eventBus.Wait()
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
