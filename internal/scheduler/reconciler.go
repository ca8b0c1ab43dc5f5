package scheduler

import (
	"context"
	"time"

	"loanflow_backend/internal/events"
	"loanflow_backend/internal/loans"
	"loanflow_backend/internal/loans/domain"
	"loanflow_backend/internal/loans/repository"
	"loanflow_backend/platform/config"
	"loanflow_backend/platform/logger"
)

const (
	defaultReconcileInterval = 30 * time.Second
	defaultStalledAfter      = time.Minute
)

// Reconciler periodically re-enqueues the pending stage for applications
// that have made no progress past the stall threshold. It is the safety net
// for lost tasks: a submit or stage whose enqueue failed is picked up here.
type Reconciler struct {
	repo         repository.ApplicationReader
	scheduler    loans.StageScheduler
	bus          events.Bus
	log          *logger.Logger
	interval     time.Duration
	stalledAfter time.Duration
}

func NewReconciler(repo repository.ApplicationReader, scheduler loans.StageScheduler, bus events.Bus, cfg config.PipelineConfig, log *logger.Logger) *Reconciler {
	interval := cfg.GetReconcileInterval()
	if interval <= 0 {
		interval = defaultReconcileInterval
	}
	stalledAfter := cfg.GetStalledAfter()
	if stalledAfter <= 0 {
		stalledAfter = defaultStalledAfter
	}

	return &Reconciler{
		repo:         repo,
		scheduler:    scheduler,
		bus:          bus,
		log:          log,
		interval:     interval,
		stalledAfter: stalledAfter,
	}
}

func (r *Reconciler) Run(ctx context.Context) {
	if r == nil || r.repo == nil {
		return
	}

	r.reconcile(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.reconcile(ctx)
		}
	}
}

func (r *Reconciler) reconcile(ctx context.Context) {
	cutoff := time.Now().Add(-r.stalledAfter)

	stalled, err := r.repo.ListStalled(ctx, cutoff)
	if err != nil {
		r.log.Warn("list stalled applications failed", "error", err)
		return
	}

	for _, item := range stalled {
		app := item.Application
		agentType, ok := domain.AgentForStatus(app.Status)
		if !ok {
			continue
		}

		// Immediate re-enqueue; the deterministic task ID makes this a no-op
		// when the original task is still pending.
		if err := r.scheduler.ScheduleStage(ctx, app.ID, agentType, 0); err != nil {
			r.log.Warn("re-enqueue stalled stage failed",
				"application_id", app.ID, "agent_type", agentType, "error", err)
			continue
		}

		r.log.Info("re-enqueued stalled application",
			"application_id", app.ID,
			"status", app.Status,
			"agent_type", agentType,
			"last_activity_at", item.LastActivityAt)

		r.bus.Publish(ctx, events.ApplicationStalled{
			BaseEvent:     events.NewBaseEvent(),
			ApplicationID: app.ID,
			UserID:        app.UserID,
			Status:        string(app.Status),
			NextAgent:     string(agentType),
		})
	}
}
