// Package agent implements the pipeline stage computations. Each stage takes
// the application snapshot and produces a Result: the activity to record,
// the status to move to, and any fields to persist on the application.
// Stages never touch the store themselves; the orchestrator applies results.
package agent

import (
	"math"

	"loanflow_backend/internal/loans/domain"
	"loanflow_backend/internal/loans/repository"
)

// Activity actions recorded in the audit trail.
const (
	ActionInitiated            = "Application initiated"
	ActionNegotiatingTerms     = "Negotiating loan terms"
	ActionKYCComplete          = "KYC verification complete"
	ActionCreditEvaluation     = "Credit evaluation complete"
	ActionSanctionGenerated    = "Sanction letter generated"
	ActionApplicationRejected  = "Application rejected"
	ActionApplicationCancelled = "Application cancelled by applicant"

	// OutcomeSuccess marks an activity whose stage completed normally.
	OutcomeSuccess = "success"
)

// Result is a stage's computed outcome, applied atomically by the orchestrator.
type Result struct {
	Action     string
	Outcome    string
	Metadata   map[string]interface{}
	NextStatus domain.Status

	// Set by underwriting only.
	CreditScore *int
	Eligibility *domain.Eligibility
}

// MasterActivity is the synchronous audit entry written at submission.
func MasterActivity() repository.ActivityParams {
	return repository.ActivityParams{
		AgentType: domain.AgentMaster,
		Action:    ActionInitiated,
		Status:    OutcomeSuccess,
		Metadata: map[string]interface{}{
			"message": "Master Agent received loan application",
		},
	}
}

// Sales quotes an interest rate and echoes the requested terms as suggestions.
func Sales(app repository.Application, rates RateQuoter) Result {
	rate := math.Round(rates.QuoteRate()*100) / 100
	return Result{
		Action:  ActionNegotiatingTerms,
		Outcome: OutcomeSuccess,
		Metadata: map[string]interface{}{
			"suggested_amount": app.Amount,
			"suggested_tenure": app.TenureMonths,
			"interest_rate":    rate,
		},
		NextStatus: domain.StatusKYCPending,
	}
}

// Verification runs the KYC checks against the applicant snapshot.
func Verification(app repository.Application, kyc IdentityVerifier) Result {
	checks := kyc.VerifyIdentity(app.TaxID, app.Phone)
	return Result{
		Action:  ActionKYCComplete,
		Outcome: OutcomeSuccess,
		Metadata: map[string]interface{}{
			"pan_verified":     checks.PANVerified,
			"aadhaar_verified": checks.AadhaarVerified,
			"cibil_check":      checks.CIBILCheck,
		},
		NextStatus: domain.StatusVerificationComplete,
	}
}

// Underwriting draws a credit score and evaluates eligibility against the
// income snapshot. Its output gates the terminal branch.
func Underwriting(app repository.Application, bureau CreditBureau) Result {
	score := bureau.Score(app.TaxID)
	eligibility := domain.Evaluate(app.Amount, app.MonthlyIncome, score, app.TenureMonths)

	return Result{
		Action:  ActionCreditEvaluation,
		Outcome: OutcomeSuccess,
		Metadata: map[string]interface{}{
			"credit_score":         score,
			"max_eligible_amount":  eligibility.MaxEligibleAmount,
			"debt_to_income_ratio": domain.DebtToIncomeRatio,
		},
		NextStatus:  domain.StatusUnderwriting,
		CreditScore: &score,
		Eligibility: &eligibility,
	}
}

// Sanction issues the terminal decision from the persisted eligibility flag.
// letterURL is the sanction letter location; empty means the decision is a
// rejection and no letter exists.
func Sanction(app repository.Application, letterURL string) Result {
	eligible := app.Eligible != nil && *app.Eligible

	if !eligible {
		return Result{
			Action:  ActionApplicationRejected,
			Outcome: OutcomeSuccess,
			Metadata: map[string]interface{}{
				"sanction_status":     string(domain.StatusRejected),
				"sanction_letter_url": nil,
			},
			NextStatus: domain.StatusRejected,
		}
	}

	return Result{
		Action:  ActionSanctionGenerated,
		Outcome: OutcomeSuccess,
		Metadata: map[string]interface{}{
			"sanction_status":     string(domain.StatusSanctioned),
			"sanction_letter_url": letterURL,
		},
		NextStatus: domain.StatusSanctioned,
	}
}
