package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"loanflow_backend/internal/email"
	"loanflow_backend/internal/events"
	"loanflow_backend/internal/loans"
	"loanflow_backend/internal/loans/agent"
	loansrepo "loanflow_backend/internal/loans/repository"
	"loanflow_backend/internal/notification"
	"loanflow_backend/internal/scheduler"
	"loanflow_backend/internal/storage"
	"loanflow_backend/platform/config"
	"loanflow_backend/platform/db"
	"loanflow_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting worker", "env", cfg.Env)

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

	sender := email.NewSender(cfg, log)

	notificationModule := notification.New(sender, cfg, log)
	notificationModule.RegisterHandlers(eventBus)

	// Optional artifact store for sanction letters.
	var letters loans.LetterStore
	if cfg.IsMinIOEnabled() {
		store, err := storage.NewArtifactStore(ctx, cfg, log)
		if err != nil {
			log.Error("failed to initialize artifact store", "error", err)
			panic("failed to initialize artifact store: " + err.Error())
		}
		letters = store
		log.Info("artifact store initialized", "bucket", cfg.GetSanctionLetterBucket())
	} else {
		log.Warn("MINIO_ENDPOINT not configured; sanction letters use the static document path")
	}

	stageScheduler, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize stage scheduler client", "error", err)
		panic("failed to initialize stage scheduler client: " + err.Error())
	}
	defer stageScheduler.Close()

	repo := loansrepo.New(pool)
	sources := agent.NewSimulatedSources(time.Now().UnixNano())
	orchestrator := loans.NewOrchestrator(repo, sources, stageScheduler, eventBus, letters, cfg, log)

	worker, err := scheduler.NewWorker(cfg, orchestrator, log)
	if err != nil {
		log.Error("failed to initialize worker", "error", err)
		panic("failed to initialize worker: " + err.Error())
	}

	reconciler := scheduler.NewReconciler(repo, stageScheduler, eventBus, cfg, log)
	go reconciler.Run(ctx)

	// Blocks until shutdown.
	worker.Run(ctx)

	eventBus.Wait()
	log.Info("worker stopped")
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
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
