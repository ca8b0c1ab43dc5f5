// Package service implements the loans module's application-facing
// operations: submission, reads, and cancellation.
package service

import (
	"context"
	"time"

	"loanflow_backend/internal/events"
	"loanflow_backend/internal/loans/agent"
	"loanflow_backend/internal/loans/domain"
	"loanflow_backend/internal/loans/repository"
	"loanflow_backend/platform/apperr"
	"loanflow_backend/platform/config"
	"loanflow_backend/platform/logger"
	"loanflow_backend/platform/phone"

	"github.com/google/uuid"
)

// StageScheduler enqueues a delayed stage task for an application.
type StageScheduler interface {
	ScheduleStage(ctx context.Context, applicationID uuid.UUID, agentType domain.AgentType, delay time.Duration) error
}

// SubmissionAck is the acknowledgement returned to the applicant; downstream
// stages run asynchronously.
const SubmissionAck = "Loan application initiated. Our AI agents are processing your request."

// SubmitParams contains the validated submission input.
type SubmitParams struct {
	UserID         uuid.UUID
	Amount         int64
	Purpose        string
	TenureMonths   int
	MonthlyIncome  int64
	EmploymentType string
	TaxID          string
	Phone          string
	Email          string
}

// SubmitResult is returned immediately on successful submission.
type SubmitResult struct {
	ApplicationID uuid.UUID
	Message       string
}

// Service coordinates loan application operations.
type Service struct {
	repo      repository.Repository
	scheduler StageScheduler
	bus       events.Bus
	cfg       config.PipelineConfig
	log       *logger.Logger
}

// New creates a new loans service.
func New(repo repository.Repository, scheduler StageScheduler, bus events.Bus, cfg config.PipelineConfig, log *logger.Logger) *Service {
	return &Service{
		repo:      repo,
		scheduler: scheduler,
		bus:       bus,
		cfg:       cfg,
		log:       log,
	}
}

// Submit validates the request, creates the application with its master
// activity, and hands the sales stage to the scheduler. It returns before
// any async stage runs.
func (s *Service) Submit(ctx context.Context, params SubmitParams) (SubmitResult, error) {
	if err := validateSubmission(params); err != nil {
		return SubmitResult{}, err
	}

	app, err := s.repo.CreateWithMasterActivity(ctx, repository.CreateParams{
		UserID:         params.UserID,
		Amount:         params.Amount,
		Purpose:        params.Purpose,
		TenureMonths:   params.TenureMonths,
		MonthlyIncome:  params.MonthlyIncome,
		EmploymentType: params.EmploymentType,
		TaxID:          params.TaxID,
		Phone:          phone.NormalizeE164(params.Phone),
		Email:          params.Email,
	}, agent.MasterActivity())
	if err != nil {
		return SubmitResult{}, err
	}

	s.bus.Publish(ctx, events.ApplicationSubmitted{
		BaseEvent:      events.NewBaseEvent(),
		ApplicationID:  app.ID,
		UserID:         app.UserID,
		Amount:         app.Amount,
		Purpose:        app.Purpose,
		ApplicantEmail: app.Email,
	})
	s.bus.Publish(ctx, events.AgentActivityRecorded{
		BaseEvent:     events.NewBaseEvent(),
		ApplicationID: app.ID,
		UserID:        app.UserID,
		AgentType:     string(domain.AgentMaster),
		Action:        agent.ActionInitiated,
	})

	// The application is committed; if the enqueue fails the reconciler
	// picks the application up once it exceeds the stall threshold.
	delay := s.cfg.GetStageDelay(string(domain.AgentSales))
	if err := s.scheduler.ScheduleStage(ctx, app.ID, domain.AgentSales, delay); err != nil {
		s.log.Error("schedule sales stage", "application_id", app.ID, "error", err)
	}

	return SubmitResult{ApplicationID: app.ID, Message: SubmissionAck}, nil
}

// Get returns an application owned by the given user.
func (s *Service) Get(ctx context.Context, userID, applicationID uuid.UUID) (repository.Application, error) {
	app, err := s.repo.GetByID(ctx, applicationID)
	if err != nil {
		return repository.Application{}, err
	}
	if app.UserID != userID {
		// Hide other users' applications entirely.
		return repository.Application{}, apperr.NotFound("loan application not found")
	}
	return app, nil
}

// List returns the user's applications, newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]repository.Application, error) {
	return s.repo.ListByUser(ctx, userID)
}

// ListActivities returns the audit trail for an application owned by the
// given user, oldest first.
func (s *Service) ListActivities(ctx context.Context, userID, applicationID uuid.UUID) ([]repository.Activity, error) {
	if _, err := s.Get(ctx, userID, applicationID); err != nil {
		return nil, err
	}
	return s.repo.ListActivities(ctx, applicationID)
}

// Cancel withdraws a pending application. Already-cancelled applications
// succeed idempotently; decided ones return a conflict.
func (s *Service) Cancel(ctx context.Context, userID, applicationID uuid.UUID) (repository.Application, error) {
	app, err := s.repo.Cancel(ctx, applicationID, userID, repository.ActivityParams{
		AgentType: domain.AgentMaster,
		Action:    agent.ActionApplicationCancelled,
		Status:    agent.OutcomeSuccess,
		Metadata: map[string]interface{}{
			"cancelled_by": userID.String(),
		},
	})
	if err != nil {
		return repository.Application{}, err
	}

	s.bus.Publish(ctx, events.ApplicationCancelled{
		BaseEvent:     events.NewBaseEvent(),
		ApplicationID: app.ID,
		UserID:        app.UserID,
	})

	return app, nil
}

func validateSubmission(params SubmitParams) error {
	if params.Amount <= 0 {
		return apperr.Validation("amount must be positive")
	}
	if !domain.IsAllowedTenure(params.TenureMonths) {
		return apperr.Validation("tenure must be one of the offered options")
	}
	if params.Purpose == "" {
		return apperr.Validation("purpose is required")
	}
	if !domain.IsKnownPurpose(params.Purpose) {
		return apperr.Validation("purpose must be one of the offered options")
	}
	if params.MonthlyIncome <= 0 {
		return apperr.Validation("monthly income must be positive")
	}
	return nil
}
