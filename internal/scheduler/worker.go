package scheduler

import (
	"context"
	"fmt"

	"loanflow_backend/internal/loans"
	"loanflow_backend/internal/loans/domain"
	"loanflow_backend/platform/apperr"
	"loanflow_backend/platform/config"
	"loanflow_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Worker consumes stage tasks and runs them through the orchestrator.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	orch   *loans.Orchestrator
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, orch *loans.Orchestrator, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		orch:   orch,
		log:    log,
	}

	mux.HandleFunc(TaskLoanStage, w.handleLoanStage)

	return w, nil
}

// handleLoanStage runs one pipeline stage. A conflict means the stage is
// stale (already ran, superseded, or the application was cancelled): the
// task completes without retry. Any other error is returned so asynq
// retries with backoff.
func (w *Worker) handleLoanStage(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLoanStagePayload(task)
	if err != nil {
		return err
	}

	applicationID, err := uuid.Parse(payload.ApplicationID)
	if err != nil {
		return err
	}

	err = w.orch.RunStage(ctx, applicationID, domain.AgentType(payload.AgentType))
	if apperr.Is(err, apperr.KindConflict) {
		w.log.Info("stale stage task skipped",
			"application_id", payload.ApplicationID, "agent_type", payload.AgentType)
		return nil
	}
	return err
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
