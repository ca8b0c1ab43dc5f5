package service

import (
	"context"
	"testing"
	"time"

	"loanflow_backend/internal/events"
	"loanflow_backend/internal/loans/agent"
	"loanflow_backend/internal/loans/domain"
	"loanflow_backend/internal/loans/repository"
	"loanflow_backend/platform/apperr"
	"loanflow_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeRepo struct {
	created     []repository.CreateParams
	masterActs  []repository.ActivityParams
	cancelCalls int
	apps        map[uuid.UUID]repository.Application
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{apps: make(map[uuid.UUID]repository.Application)}
}

func (f *fakeRepo) CreateWithMasterActivity(ctx context.Context, params repository.CreateParams, activity repository.ActivityParams) (repository.Application, error) {
	f.created = append(f.created, params)
	f.masterActs = append(f.masterActs, activity)
	app := repository.Application{
		ID:     uuid.New(),
		UserID: params.UserID,
		Amount: params.Amount,
		Status: domain.StatusInitiated,
		Email:  params.Email,
		Phone:  params.Phone,
	}
	f.apps[app.ID] = app
	return app, nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (repository.Application, error) {
	app, ok := f.apps[id]
	if !ok {
		return repository.Application{}, apperr.NotFound("loan application not found")
	}
	return app, nil
}

func (f *fakeRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]repository.Application, error) {
	return nil, nil
}

func (f *fakeRepo) ListActivities(ctx context.Context, applicationID uuid.UUID) ([]repository.Activity, error) {
	return []repository.Activity{{ApplicationID: applicationID}}, nil
}

func (f *fakeRepo) ListStalled(ctx context.Context, cutoff time.Time) ([]repository.StalledApplication, error) {
	return nil, nil
}

func (f *fakeRepo) ApplyStageResult(ctx context.Context, update repository.StageUpdate) (repository.Application, error) {
	return repository.Application{}, nil
}

func (f *fakeRepo) Cancel(ctx context.Context, id, userID uuid.UUID, activity repository.ActivityParams) (repository.Application, error) {
	f.cancelCalls++
	app, ok := f.apps[id]
	if !ok || app.UserID != userID {
		return repository.Application{}, apperr.NotFound("loan application not found")
	}
	app.Status = domain.StatusCancelled
	f.apps[id] = app
	return app, nil
}

type fakeScheduler struct {
	calls []domain.AgentType
}

func (f *fakeScheduler) ScheduleStage(ctx context.Context, applicationID uuid.UUID, agentType domain.AgentType, delay time.Duration) error {
	f.calls = append(f.calls, agentType)
	return nil
}

type testPipelineConfig struct{}

func (testPipelineConfig) GetStageDelay(string) time.Duration  { return 2 * time.Second }
func (testPipelineConfig) GetStalledAfter() time.Duration      { return time.Minute }
func (testPipelineConfig) GetReconcileInterval() time.Duration { return 30 * time.Second }
func (testPipelineConfig) GetAppBaseURL() string               { return "http://localhost:4200" }

func newTestService(repo repository.Repository, sched *fakeScheduler) *Service {
	log := logger.New("test")
	return New(repo, sched, events.NewInMemoryBus(log), testPipelineConfig{}, log)
}

func validParams() SubmitParams {
	return SubmitParams{
		UserID:         uuid.New(),
		Amount:         500_000,
		Purpose:        "Home Renovation",
		TenureMonths:   24,
		MonthlyIncome:  60_000,
		EmploymentType: "salaried",
		TaxID:          "ABCDE1234F",
		Phone:          "9876543210",
		Email:          "applicant@example.com",
	}
}

func TestSubmitCreatesApplicationAndSchedulesSales(t *testing.T) {
	repo := newFakeRepo()
	sched := &fakeScheduler{}
	svc := newTestService(repo, sched)

	result, err := svc.Submit(context.Background(), validParams())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if result.ApplicationID == uuid.Nil {
		t.Error("expected application id")
	}
	if result.Message != SubmissionAck {
		t.Errorf("message = %q", result.Message)
	}

	if len(repo.masterActs) != 1 || repo.masterActs[0].AgentType != domain.AgentMaster {
		t.Fatalf("master activity not recorded: %+v", repo.masterActs)
	}
	if repo.masterActs[0].Action != agent.ActionInitiated {
		t.Errorf("master action = %q", repo.masterActs[0].Action)
	}

	if len(sched.calls) != 1 || sched.calls[0] != domain.AgentSales {
		t.Fatalf("scheduled stages = %v, want [sales]", sched.calls)
	}
}

func TestSubmitNormalizesPhone(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeScheduler{})

	if _, err := svc.Submit(context.Background(), validParams()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if got := repo.created[0].Phone; got != "+919876543210" {
		t.Errorf("phone = %q, want +919876543210", got)
	}
}

func TestSubmitValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*SubmitParams)
	}{
		{"zero amount", func(p *SubmitParams) { p.Amount = 0 }},
		{"negative amount", func(p *SubmitParams) { p.Amount = -100 }},
		{"bad tenure", func(p *SubmitParams) { p.TenureMonths = 13 }},
		{"empty purpose", func(p *SubmitParams) { p.Purpose = "" }},
		{"unknown purpose", func(p *SubmitParams) { p.Purpose = "Yacht" }},
		{"zero income", func(p *SubmitParams) { p.MonthlyIncome = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newFakeRepo()
			sched := &fakeScheduler{}
			svc := newTestService(repo, sched)

			params := validParams()
			tc.mutate(&params)

			_, err := svc.Submit(context.Background(), params)
			if !apperr.Is(err, apperr.KindValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if len(repo.created) != 0 {
				t.Error("no application should be created on validation failure")
			}
			if len(sched.calls) != 0 {
				t.Error("nothing should be scheduled on validation failure")
			}
		})
	}
}

func TestGetHidesForeignApplications(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeScheduler{})
	ctx := context.Background()

	result, err := svc.Submit(ctx, validParams())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	_, err = svc.Get(ctx, uuid.New(), result.ApplicationID)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for foreign user, got %v", err)
	}
}

func TestCancelOwnApplication(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeScheduler{})
	ctx := context.Background()

	params := validParams()
	result, err := svc.Submit(ctx, params)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	app, err := svc.Cancel(ctx, params.UserID, result.ApplicationID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if app.Status != domain.StatusCancelled {
		t.Errorf("status = %s, want cancelled", app.Status)
	}
	if repo.cancelCalls != 1 {
		t.Errorf("cancel calls = %d", repo.cancelCalls)
	}
}
