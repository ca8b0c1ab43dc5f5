// Package loans implements the loan application pipeline: submission,
// delayed stage execution, and the audit trail.
package loans

import (
	"context"
	"fmt"
	"time"

	"loanflow_backend/internal/events"
	"loanflow_backend/internal/loans/agent"
	"loanflow_backend/internal/loans/domain"
	"loanflow_backend/internal/loans/letter"
	"loanflow_backend/internal/loans/repository"
	"loanflow_backend/platform/apperr"
	"loanflow_backend/platform/config"
	"loanflow_backend/platform/logger"

	"github.com/google/uuid"
)

// StageScheduler enqueues a delayed stage task for an application.
// Scheduling the same (application, agent) pair twice is a no-op.
type StageScheduler interface {
	ScheduleStage(ctx context.Context, applicationID uuid.UUID, agentType domain.AgentType, delay time.Duration) error
}

// LetterStore persists generated sanction letters.
type LetterStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Orchestrator drives the async stages. It is the only component that
// applies stage results to the store.
type Orchestrator struct {
	repo      repository.Repository
	sources   agent.Sources
	scheduler StageScheduler
	bus       events.Bus
	letters   LetterStore // nil when no artifact store is configured
	cfg       config.PipelineConfig
	log       *logger.Logger
}

// NewOrchestrator creates a stage orchestrator. letters may be nil, in which
// case sanction letters fall back to a static document path.
func NewOrchestrator(
	repo repository.Repository,
	sources agent.Sources,
	scheduler StageScheduler,
	bus events.Bus,
	letters LetterStore,
	cfg config.PipelineConfig,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		repo:      repo,
		sources:   sources,
		scheduler: scheduler,
		bus:       bus,
		letters:   letters,
		cfg:       cfg,
		log:       log,
	}
}

// RunStage executes one pipeline stage for an application. It returns
// apperr.Conflict when the application is not in the status the stage
// expects (already ran, superseded, or cancelled); callers skip the stage in
// that case. Any other error is retryable.
func (o *Orchestrator) RunStage(ctx context.Context, applicationID uuid.UUID, agentType domain.AgentType) error {
	expected, ok := domain.ExpectedStatus(agentType)
	if !ok {
		return apperr.BadRequest(fmt.Sprintf("unknown stage agent: %s", agentType))
	}

	app, err := o.repo.GetByID(ctx, applicationID)
	if err != nil {
		return err
	}

	// Cheap pre-check; the conditional update below is authoritative.
	if app.Status != expected {
		o.log.StageEvent(applicationID.String(), string(agentType), "skipped")
		return apperr.Conflict(fmt.Sprintf(
			"application is in status %s, stage expects %s", app.Status, expected))
	}

	result := o.computeStage(ctx, app, agentType)

	update := repository.StageUpdate{
		ApplicationID: applicationID,
		FromStatus:    expected,
		ToStatus:      result.NextStatus,
		CreditScore:   result.CreditScore,
		Activity: repository.ActivityParams{
			AgentType: agentType,
			Action:    result.Action,
			Status:    result.Outcome,
			Metadata:  result.Metadata,
		},
	}
	if result.Eligibility != nil {
		update.Eligible = &result.Eligibility.Eligible
		update.MaxEligibleAmount = &result.Eligibility.MaxEligibleAmount
		update.RecommendedTenure = &result.Eligibility.RecommendedTenure
	}

	updated, err := o.repo.ApplyStageResult(ctx, update)
	if err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			o.log.StageEvent(applicationID.String(), string(agentType), "skipped")
		}
		return err
	}

	o.log.StageEvent(applicationID.String(), string(agentType), string(updated.Status))
	o.publishStageEvents(ctx, updated, agentType, app.Status, result.Action)
	o.scheduleNext(ctx, updated, agentType)

	return nil
}

func (o *Orchestrator) computeStage(ctx context.Context, app repository.Application, agentType domain.AgentType) agent.Result {
	switch agentType {
	case domain.AgentSales:
		return agent.Sales(app, o.sources.Rates)
	case domain.AgentVerification:
		return agent.Verification(app, o.sources.KYC)
	case domain.AgentUnderwriting:
		return agent.Underwriting(app, o.sources.Bureau)
	case domain.AgentSanction:
		return agent.Sanction(app, o.sanctionLetterURL(ctx, app))
	default:
		// Unreachable: ExpectedStatus already rejected unknown agents.
		panic(fmt.Sprintf("unhandled agent type %s", agentType))
	}
}

// sanctionLetterURL generates and stores the sanction letter for an eligible
// application. Letter storage failures never block the decision; the static
// document path is used instead.
func (o *Orchestrator) sanctionLetterURL(ctx context.Context, app repository.Application) string {
	if app.Eligible == nil || !*app.Eligible {
		return ""
	}
	if o.letters == nil {
		return domain.DefaultSanctionLetterPath
	}

	statusURL := fmt.Sprintf("%s/applications/%s", o.cfg.GetAppBaseURL(), app.ID)
	doc, err := letter.Generate(app, statusURL)
	if err != nil {
		o.log.Error("generate sanction letter", "application_id", app.ID, "error", err)
		return domain.DefaultSanctionLetterPath
	}

	qrKey := fmt.Sprintf("%s/status_qr.png", app.ID)
	if _, err := o.letters.Put(ctx, qrKey, doc.QRCode, "image/png"); err != nil {
		o.log.Error("store status qr code", "application_id", app.ID, "error", err)
	}

	letterKey := fmt.Sprintf("%s/sanction_letter.txt", app.ID)
	url, err := o.letters.Put(ctx, letterKey, doc.Content, doc.ContentType)
	if err != nil {
		o.log.Error("store sanction letter", "application_id", app.ID, "error", err)
		return domain.DefaultSanctionLetterPath
	}
	return url
}

func (o *Orchestrator) publishStageEvents(ctx context.Context, app repository.Application, agentType domain.AgentType, from domain.Status, action string) {
	o.bus.Publish(ctx, events.ApplicationStatusChanged{
		BaseEvent:      events.NewBaseEvent(),
		ApplicationID:  app.ID,
		UserID:         app.UserID,
		FromStatus:     string(from),
		ToStatus:       string(app.Status),
		AgentType:      string(agentType),
		ApplicantEmail: app.Email,
	})
	o.bus.Publish(ctx, events.AgentActivityRecorded{
		BaseEvent:     events.NewBaseEvent(),
		ApplicationID: app.ID,
		UserID:        app.UserID,
		AgentType:     string(agentType),
		Action:        action,
	})
}

// scheduleNext enqueues the following stage. A scheduling failure is logged
// rather than returned: the stage already committed, so retrying the task
// would only hit the conflict path. The reconciler re-drives stalled
// applications instead.
func (o *Orchestrator) scheduleNext(ctx context.Context, app repository.Application, agentType domain.AgentType) {
	if app.Status.IsTerminal() {
		return
	}
	next, ok := domain.NextAgent(agentType)
	if !ok {
		return
	}

	delay := o.cfg.GetStageDelay(string(next))
	if err := o.scheduler.ScheduleStage(ctx, app.ID, next, delay); err != nil {
		o.log.Error("schedule next stage",
			"application_id", app.ID, "agent_type", next, "error", err)
	}
}
