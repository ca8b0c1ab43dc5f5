package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"loanflow_backend/internal/loans/domain"
	"loanflow_backend/platform/apperr"
)

const applicationNotFoundMessage = "loan application not found"

const applicationColumns = `
	id, user_id, amount, purpose, tenure_months, status,
	credit_score, eligible, max_eligible_amount, recommended_tenure,
	monthly_income, employment_type, tax_id, phone, email,
	created_at, updated_at`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new loan applications repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// CreateWithMasterActivity inserts the application row and the master
// activity in a single transaction, so a submitted application always has
// its first audit trail entry.
func (r *Repo) CreateWithMasterActivity(ctx context.Context, params CreateParams, activity ActivityParams) (Application, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Application{}, fmt.Errorf("begin create application: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO loan_applications
			(user_id, amount, purpose, tenure_months, status,
			 monthly_income, employment_type, tax_id, phone, email)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING` + applicationColumns

	app, err := scanApplication(tx.QueryRow(ctx, query,
		params.UserID, params.Amount, params.Purpose, params.TenureMonths, domain.StatusInitiated,
		params.MonthlyIncome, params.EmploymentType, params.TaxID, params.Phone, params.Email,
	))
	if err != nil {
		return Application{}, fmt.Errorf("insert application: %w", err)
	}

	if err := insertActivity(ctx, tx, app.ID, activity); err != nil {
		return Application{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Application{}, fmt.Errorf("commit create application: %w", err)
	}

	return app, nil
}

// GetByID retrieves a loan application by its ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Application, error) {
	query := `SELECT` + applicationColumns + ` FROM loan_applications WHERE id = $1`

	app, err := scanApplication(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Application{}, apperr.NotFound(applicationNotFoundMessage)
		}
		return Application{}, fmt.Errorf("get application by id: %w", err)
	}

	return app, nil
}

// ListByUser retrieves a user's applications ordered newest-first.
func (r *Repo) ListByUser(ctx context.Context, userID uuid.UUID) ([]Application, error) {
	query := `SELECT` + applicationColumns + `
		FROM loan_applications
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	apps := make([]Application, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		apps = append(apps, app)
	}

	return apps, rows.Err()
}

// ListActivities retrieves an application's audit trail ordered oldest-first.
func (r *Repo) ListActivities(ctx context.Context, applicationID uuid.UUID) ([]Activity, error) {
	query := `
		SELECT id, application_id, agent_type, action, status, metadata, created_at
		FROM agent_activities
		WHERE application_id = $1
		ORDER BY created_at ASC, id ASC`

	rows, err := r.pool.Query(ctx, query, applicationID)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	activities := make([]Activity, 0)
	for rows.Next() {
		var act Activity
		if err := rows.Scan(
			&act.ID, &act.ApplicationID, &act.AgentType, &act.Action,
			&act.Status, &act.Metadata, &act.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		activities = append(activities, act)
	}

	return activities, rows.Err()
}

// ApplyStageResult performs the conditional status transition and the
// activity insert in one transaction. A zero-row update means the
// application is no longer in the expected status; nothing is committed and
// apperr.Conflict is returned so the caller can skip the stage.
func (r *Repo) ApplyStageResult(ctx context.Context, update StageUpdate) (Application, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Application{}, fmt.Errorf("begin stage result: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE loan_applications
		SET status = $1,
		    credit_score = COALESCE($2, credit_score),
		    eligible = COALESCE($3, eligible),
		    max_eligible_amount = COALESCE($4, max_eligible_amount),
		    recommended_tenure = COALESCE($5, recommended_tenure),
		    updated_at = now()
		WHERE id = $6 AND status = $7
		RETURNING` + applicationColumns

	app, err := scanApplication(tx.QueryRow(ctx, query,
		update.ToStatus,
		update.CreditScore, update.Eligible, update.MaxEligibleAmount, update.RecommendedTenure,
		update.ApplicationID, update.FromStatus,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Application{}, apperr.Conflict(fmt.Sprintf(
				"application is not in status %s", update.FromStatus))
		}
		return Application{}, fmt.Errorf("apply stage transition: %w", err)
	}

	if err := insertActivity(ctx, tx, app.ID, update.Activity); err != nil {
		return Application{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Application{}, fmt.Errorf("commit stage result: %w", err)
	}

	return app, nil
}

// Cancel moves a non-terminal application to cancelled and records the
// cancellation activity in the same transaction. The update is conditional
// on the current status, so a stage racing with the cancel cannot resurrect
// the application.
func (r *Repo) Cancel(ctx context.Context, id, userID uuid.UUID, activity ActivityParams) (Application, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Application{}, fmt.Errorf("begin cancel: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE loan_applications
		SET status = $1, updated_at = now()
		WHERE id = $2 AND user_id = $3 AND status NOT IN ($4, $5, $6)
		RETURNING` + applicationColumns

	app, err := scanApplication(tx.QueryRow(ctx, query,
		domain.StatusCancelled, id, userID,
		domain.StatusSanctioned, domain.StatusRejected, domain.StatusCancelled,
	))
	if err == nil {
		if err := insertActivity(ctx, tx, app.ID, activity); err != nil {
			return Application{}, err
		}
		if err := tx.Commit(ctx); err != nil {
			return Application{}, fmt.Errorf("commit cancel: %w", err)
		}
		return app, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Application{}, fmt.Errorf("cancel application: %w", err)
	}

	// Zero rows: distinguish missing/foreign, already cancelled, and decided.
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return Application{}, err
	}
	if current.UserID != userID {
		return Application{}, apperr.NotFound(applicationNotFoundMessage)
	}
	if current.Status == domain.StatusCancelled {
		return current, nil
	}
	return Application{}, apperr.Conflict("application already has a final decision")
}

// ListStalled retrieves non-terminal applications whose most recent activity
// is older than the cutoff.
func (r *Repo) ListStalled(ctx context.Context, cutoff time.Time) ([]StalledApplication, error) {
	query := `
		SELECT a.id, a.user_id, a.amount, a.purpose, a.tenure_months, a.status,
		       a.credit_score, a.eligible, a.max_eligible_amount, a.recommended_tenure,
		       a.monthly_income, a.employment_type, a.tax_id, a.phone, a.email,
		       a.created_at, a.updated_at,
		       act.created_at AS last_activity_at
		FROM loan_applications a
		JOIN LATERAL (
			SELECT created_at
			FROM agent_activities
			WHERE application_id = a.id
			ORDER BY created_at DESC
			LIMIT 1
		) act ON true
		WHERE a.status NOT IN ($1, $2, $3)
		  AND act.created_at < $4
		ORDER BY act.created_at ASC`

	rows, err := r.pool.Query(ctx, query,
		domain.StatusSanctioned, domain.StatusRejected, domain.StatusCancelled, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list stalled applications: %w", err)
	}
	defer rows.Close()

	stalled := make([]StalledApplication, 0)
	for rows.Next() {
		var item StalledApplication
		app := &item.Application
		if err := rows.Scan(
			&app.ID, &app.UserID, &app.Amount, &app.Purpose, &app.TenureMonths, &app.Status,
			&app.CreditScore, &app.Eligible, &app.MaxEligibleAmount, &app.RecommendedTenure,
			&app.MonthlyIncome, &app.EmploymentType, &app.TaxID, &app.Phone, &app.Email,
			&app.CreatedAt, &app.UpdatedAt,
			&item.LastActivityAt,
		); err != nil {
			return nil, fmt.Errorf("scan stalled application: %w", err)
		}
		stalled = append(stalled, item)
	}

	return stalled, rows.Err()
}

func insertActivity(ctx context.Context, tx pgx.Tx, applicationID uuid.UUID, activity ActivityParams) error {
	query := `
		INSERT INTO agent_activities (application_id, agent_type, action, status, metadata)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := tx.Exec(ctx, query,
		applicationID, activity.AgentType, activity.Action, activity.Status, activity.Metadata,
	); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func scanApplication(row pgx.Row) (Application, error) {
	var app Application
	err := row.Scan(
		&app.ID, &app.UserID, &app.Amount, &app.Purpose, &app.TenureMonths, &app.Status,
		&app.CreditScore, &app.Eligible, &app.MaxEligibleAmount, &app.RecommendedTenure,
		&app.MonthlyIncome, &app.EmploymentType, &app.TaxID, &app.Phone, &app.Email,
		&app.CreatedAt, &app.UpdatedAt,
	)
	return app, err
}
