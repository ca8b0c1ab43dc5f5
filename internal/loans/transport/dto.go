// Package transport defines the wire DTOs for the loans module.
package transport

import (
	"time"

	"loanflow_backend/internal/loans/repository"

	"github.com/google/uuid"
)

// UserDataRequest is the applicant snapshot captured at submission.
type UserDataRequest struct {
	MonthlyIncome  int64  `json:"monthly_income" validate:"required,gt=0"`
	EmploymentType string `json:"employment_type" validate:"required,max=50"`
	PANNumber      string `json:"pan_number" validate:"omitempty,len=10"`
	Phone          string `json:"phone" validate:"omitempty,max=20"`
	Email          string `json:"email" validate:"omitempty,email"`
}

// SubmitLoanRequest contains data for submitting a loan application.
type SubmitLoanRequest struct {
	Amount       int64           `json:"amount" validate:"required,gt=0"`
	Purpose      string          `json:"purpose" validate:"required,max=100"`
	TenureMonths int             `json:"tenure_months" validate:"required,oneof=6 12 18 24 36 48 60"`
	UserData     UserDataRequest `json:"user_data" validate:"required"`
}

// SubmitLoanResponse acknowledges a submission.
type SubmitLoanResponse struct {
	Success       bool      `json:"success"`
	ApplicationID uuid.UUID `json:"application_id"`
	Message       string    `json:"message"`
}

// EligibilityResultResponse is the underwriting outcome on an application.
type EligibilityResultResponse struct {
	Eligible          bool  `json:"eligible"`
	MaxAmount         int64 `json:"max_amount"`
	RecommendedTenure int   `json:"recommended_tenure"`
}

// ApplicationResponse represents a loan application in API responses.
type ApplicationResponse struct {
	ID                uuid.UUID                  `json:"id"`
	Amount            int64                      `json:"amount"`
	Purpose           string                     `json:"purpose"`
	TenureMonths      int                        `json:"tenure_months"`
	Status            string                     `json:"status"`
	CreditScore       *int                       `json:"credit_score,omitempty"`
	EligibilityResult *EligibilityResultResponse `json:"eligibility_result,omitempty"`
	CreatedAt         string                     `json:"created_at"`
	UpdatedAt         string                     `json:"updated_at"`
}

// ApplicationListResponse wraps a user's applications.
type ApplicationListResponse struct {
	Items []ApplicationResponse `json:"items"`
	Total int                   `json:"total"`
}

// ActivityResponse represents one audit trail entry.
type ActivityResponse struct {
	ID        uuid.UUID              `json:"id"`
	AgentType string                 `json:"agent_type"`
	Action    string                 `json:"action"`
	Status    string                 `json:"status"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt string                 `json:"created_at"`
}

// ActivityListResponse wraps an application's audit trail.
type ActivityListResponse struct {
	Items []ActivityResponse `json:"items"`
	Total int                `json:"total"`
}

// FromApplication maps a repository application to its response form.
func FromApplication(app repository.Application) ApplicationResponse {
	resp := ApplicationResponse{
		ID:           app.ID,
		Amount:       app.Amount,
		Purpose:      app.Purpose,
		TenureMonths: app.TenureMonths,
		Status:       string(app.Status),
		CreditScore:  app.CreditScore,
		CreatedAt:    app.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    app.UpdatedAt.Format(time.RFC3339),
	}
	if app.Eligible != nil {
		result := &EligibilityResultResponse{Eligible: *app.Eligible}
		if app.MaxEligibleAmount != nil {
			result.MaxAmount = *app.MaxEligibleAmount
		}
		if app.RecommendedTenure != nil {
			result.RecommendedTenure = *app.RecommendedTenure
		}
		resp.EligibilityResult = result
	}
	return resp
}

// FromApplications maps a list of applications.
func FromApplications(apps []repository.Application) ApplicationListResponse {
	items := make([]ApplicationResponse, 0, len(apps))
	for _, app := range apps {
		items = append(items, FromApplication(app))
	}
	return ApplicationListResponse{Items: items, Total: len(items)}
}

// FromActivity maps an audit trail entry to its response form.
func FromActivity(act repository.Activity) ActivityResponse {
	return ActivityResponse{
		ID:        act.ID,
		AgentType: string(act.AgentType),
		Action:    act.Action,
		Status:    act.Status,
		Metadata:  act.Metadata,
		CreatedAt: act.CreatedAt.Format(time.RFC3339),
	}
}

// FromActivities maps an application's audit trail.
func FromActivities(activities []repository.Activity) ActivityListResponse {
	items := make([]ActivityResponse, 0, len(activities))
	for _, act := range activities {
		items = append(items, FromActivity(act))
	}
	return ActivityListResponse{Items: items, Total: len(items)}
}
