package repository

import (
	"context"
	"time"

	"loanflow_backend/internal/loans/domain"

	"github.com/google/uuid"
)

// Application is a loan application row, including the applicant snapshot
// captured at submission time so async stages can run without re-fetching
// profile data.
type Application struct {
	ID           uuid.UUID     `db:"id"`
	UserID       uuid.UUID     `db:"user_id"`
	Amount       int64         `db:"amount"`
	Purpose      string        `db:"purpose"`
	TenureMonths int           `db:"tenure_months"`
	Status       domain.Status `db:"status"`

	// Set by underwriting; nil until that stage has run.
	CreditScore       *int   `db:"credit_score"`
	Eligible          *bool  `db:"eligible"`
	MaxEligibleAmount *int64 `db:"max_eligible_amount"`
	RecommendedTenure *int   `db:"recommended_tenure"`

	// Applicant snapshot.
	MonthlyIncome  int64  `db:"monthly_income"`
	EmploymentType string `db:"employment_type"`
	TaxID          string `db:"tax_id"`
	Phone          string `db:"phone"`
	Email          string `db:"email"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Activity is one entry in an application's audit trail.
type Activity struct {
	ID            uuid.UUID              `db:"id"`
	ApplicationID uuid.UUID              `db:"application_id"`
	AgentType     domain.AgentType       `db:"agent_type"`
	Action        string                 `db:"action"`
	Status        string                 `db:"status"`
	Metadata      map[string]interface{} `db:"metadata"`
	CreatedAt     time.Time              `db:"created_at"`
}

// CreateParams contains parameters for creating a loan application.
type CreateParams struct {
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

// ActivityParams contains parameters for appending an audit trail entry.
type ActivityParams struct {
	AgentType domain.AgentType
	Action    string
	Status    string
	Metadata  map[string]interface{}
}

// StageUpdate describes the atomic outcome of one pipeline stage: the
// conditional status transition, optional underwriting fields, and the
// activity that records it. The transition only applies when the
// application's current status equals FromStatus.
type StageUpdate struct {
	ApplicationID uuid.UUID
	FromStatus    domain.Status
	ToStatus      domain.Status

	CreditScore       *int
	Eligible          *bool
	MaxEligibleAmount *int64
	RecommendedTenure *int

	Activity ActivityParams
}

// StalledApplication pairs a non-terminal application with the timestamp of
// its most recent activity.
type StalledApplication struct {
	Application    Application
	LastActivityAt time.Time
}

// ApplicationReader provides read operations for loan applications.
type ApplicationReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (Application, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Application, error)
	ListActivities(ctx context.Context, applicationID uuid.UUID) ([]Activity, error)
	ListStalled(ctx context.Context, cutoff time.Time) ([]StalledApplication, error)
}

// ApplicationWriter provides write operations for loan applications.
type ApplicationWriter interface {
	// CreateWithMasterActivity inserts the application and its master
	// activity in one transaction.
	CreateWithMasterActivity(ctx context.Context, params CreateParams, activity ActivityParams) (Application, error)

	// ApplyStageResult applies a stage outcome atomically: the conditional
	// status transition and the activity insert commit together or not at
	// all. Returns apperr.Conflict when the application is not in
	// FromStatus, in which case nothing is written.
	ApplyStageResult(ctx context.Context, update StageUpdate) (Application, error)

	// Cancel moves a non-terminal application owned by userID to cancelled
	// and records the given activity in the same transaction. Cancelling an
	// already-cancelled application is a no-op success (no activity written);
	// cancelling a sanctioned or rejected one returns apperr.Conflict.
	Cancel(ctx context.Context, id, userID uuid.UUID, activity ActivityParams) (Application, error)
}

// Repository combines all loan application repository operations.
type Repository interface {
	ApplicationReader
	ApplicationWriter
}
