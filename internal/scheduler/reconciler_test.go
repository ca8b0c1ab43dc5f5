package scheduler

import (
	"context"
	"testing"
	"time"

	"loanflow_backend/internal/events"
	"loanflow_backend/internal/loans/domain"
	"loanflow_backend/internal/loans/repository"
	"loanflow_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStalledReader struct {
	stalled []repository.StalledApplication
}

func (f *fakeStalledReader) GetByID(ctx context.Context, id uuid.UUID) (repository.Application, error) {
	return repository.Application{}, nil
}

func (f *fakeStalledReader) ListByUser(ctx context.Context, userID uuid.UUID) ([]repository.Application, error) {
	return nil, nil
}

func (f *fakeStalledReader) ListActivities(ctx context.Context, applicationID uuid.UUID) ([]repository.Activity, error) {
	return nil, nil
}

func (f *fakeStalledReader) ListStalled(ctx context.Context, cutoff time.Time) ([]repository.StalledApplication, error) {
	return f.stalled, nil
}

type recordedSchedule struct {
	applicationID uuid.UUID
	agentType     domain.AgentType
	delay         time.Duration
}

type recordingScheduler struct {
	calls []recordedSchedule
}

func (r *recordingScheduler) ScheduleStage(ctx context.Context, applicationID uuid.UUID, agentType domain.AgentType, delay time.Duration) error {
	r.calls = append(r.calls, recordedSchedule{applicationID, agentType, delay})
	return nil
}

type testPipelineConfig struct{}

func (testPipelineConfig) GetStageDelay(string) time.Duration  { return time.Second }
func (testPipelineConfig) GetStalledAfter() time.Duration      { return time.Minute }
func (testPipelineConfig) GetReconcileInterval() time.Duration { return 30 * time.Second }
func (testPipelineConfig) GetAppBaseURL() string               { return "http://localhost:4200" }

func TestReconcileReenqueuesPendingStage(t *testing.T) {
	appID := uuid.New()
	reader := &fakeStalledReader{stalled: []repository.StalledApplication{
		{
			Application: repository.Application{
				ID:     appID,
				UserID: uuid.New(),
				Status: domain.StatusKYCPending,
			},
			LastActivityAt: time.Now().Add(-5 * time.Minute),
		},
	}}
	sched := &recordingScheduler{}
	log := logger.New("test")

	r := NewReconciler(reader, sched, events.NewInMemoryBus(log), testPipelineConfig{}, log)
	r.reconcile(context.Background())

	if len(sched.calls) != 1 {
		t.Fatalf("got %d schedule calls, want 1", len(sched.calls))
	}
	call := sched.calls[0]
	if call.applicationID != appID {
		t.Errorf("application id = %s", call.applicationID)
	}
	if call.agentType != domain.AgentVerification {
		t.Errorf("agent = %s, want verification (kyc_pending waits on it)", call.agentType)
	}
	if call.delay != 0 {
		t.Errorf("delay = %v, want immediate", call.delay)
	}
}

func TestReconcileSkipsStatusWithoutPendingAgent(t *testing.T) {
	reader := &fakeStalledReader{stalled: []repository.StalledApplication{
		{
			Application: repository.Application{
				ID:     uuid.New(),
				Status: domain.Status("unknown_state"),
			},
			LastActivityAt: time.Now().Add(-5 * time.Minute),
		},
	}}
	sched := &recordingScheduler{}
	log := logger.New("test")

	r := NewReconciler(reader, sched, events.NewInMemoryBus(log), testPipelineConfig{}, log)
	r.reconcile(context.Background())

	if len(sched.calls) != 0 {
		t.Fatalf("got %d schedule calls, want 0", len(sched.calls))
	}
}
