package agent

import (
	"testing"

	"loanflow_backend/internal/loans/domain"
	"loanflow_backend/internal/loans/repository"
)

type fixedRates struct{ rate float64 }

func (f fixedRates) QuoteRate() float64 { return f.rate }

type fixedBureau struct{ score int }

func (f fixedBureau) Score(string) int { return f.score }

func sampleApp() repository.Application {
	return repository.Application{
		Amount:        2_000_000,
		TenureMonths:  12,
		MonthlyIncome: 50_000,
		TaxID:         "ABCDE1234F",
		Phone:         "+919876543210",
	}
}

func TestSalesEchoesRequestedTerms(t *testing.T) {
	result := Sales(sampleApp(), fixedRates{11.25})

	if result.NextStatus != domain.StatusKYCPending {
		t.Fatalf("next status = %s, want %s", result.NextStatus, domain.StatusKYCPending)
	}
	if result.Action != ActionNegotiatingTerms {
		t.Errorf("action = %q", result.Action)
	}
	if got := result.Metadata["suggested_amount"]; got != int64(2_000_000) {
		t.Errorf("suggested_amount = %v", got)
	}
	if got := result.Metadata["suggested_tenure"]; got != 12 {
		t.Errorf("suggested_tenure = %v", got)
	}
	if got := result.Metadata["interest_rate"]; got != 11.25 {
		t.Errorf("interest_rate = %v", got)
	}
}

func TestSimulatedRateStaysInBounds(t *testing.T) {
	sources := NewSimulatedSources(1)
	for i := 0; i < 1000; i++ {
		rate := sources.Rates.QuoteRate()
		if rate < domain.BaseInterestRate || rate >= domain.BaseInterestRate+domain.InterestRateSpread {
			t.Fatalf("rate %f out of bounds", rate)
		}
	}
}

func TestVerificationRecordsKYCChecks(t *testing.T) {
	sources := NewSimulatedSources(1)
	result := Verification(sampleApp(), sources.KYC)

	if result.NextStatus != domain.StatusVerificationComplete {
		t.Fatalf("next status = %s", result.NextStatus)
	}
	if got := result.Metadata["pan_verified"]; got != true {
		t.Errorf("pan_verified = %v", got)
	}
	if got := result.Metadata["aadhaar_verified"]; got != true {
		t.Errorf("aadhaar_verified = %v", got)
	}
	if got := result.Metadata["cibil_check"]; got != "passed" {
		t.Errorf("cibil_check = %v", got)
	}
}

func TestUnderwritingEligibleApplication(t *testing.T) {
	result := Underwriting(sampleApp(), fixedBureau{700})

	if result.NextStatus != domain.StatusUnderwriting {
		t.Fatalf("next status = %s", result.NextStatus)
	}
	if result.CreditScore == nil || *result.CreditScore != 700 {
		t.Fatalf("credit score = %v", result.CreditScore)
	}
	if result.Eligibility == nil || !result.Eligibility.Eligible {
		t.Fatal("expected eligible")
	}
	if result.Eligibility.MaxEligibleAmount != 3_000_000 {
		t.Errorf("max eligible = %d", result.Eligibility.MaxEligibleAmount)
	}
	if result.Eligibility.RecommendedTenure != 12 {
		t.Errorf("recommended tenure = %d", result.Eligibility.RecommendedTenure)
	}
	if got := result.Metadata["debt_to_income_ratio"]; got != domain.DebtToIncomeRatio {
		t.Errorf("debt_to_income_ratio = %v", got)
	}
}

func TestUnderwritingIncomeTooLow(t *testing.T) {
	app := sampleApp()
	app.MonthlyIncome = 20_000
	app.TenureMonths = 24

	result := Underwriting(app, fixedBureau{850})

	if result.Eligibility.Eligible {
		t.Fatal("expected not eligible when amount exceeds income cap")
	}
	if result.Eligibility.MaxEligibleAmount != 1_200_000 {
		t.Errorf("max eligible = %d", result.Eligibility.MaxEligibleAmount)
	}
}

func TestSimulatedScoreStaysInBounds(t *testing.T) {
	sources := NewSimulatedSources(2)
	for i := 0; i < 1000; i++ {
		score := sources.Bureau.Score("ABCDE1234F")
		if score < domain.MinCreditScore || score >= domain.MinCreditScore+domain.CreditScoreSpread {
			t.Fatalf("score %d out of bounds", score)
		}
	}
}

func TestSanctionApproves(t *testing.T) {
	app := sampleApp()
	eligible := true
	app.Eligible = &eligible

	result := Sanction(app, "/documents/sanction_letter.pdf")

	if result.NextStatus != domain.StatusSanctioned {
		t.Fatalf("next status = %s", result.NextStatus)
	}
	if result.Action != ActionSanctionGenerated {
		t.Errorf("action = %q", result.Action)
	}
	if got := result.Metadata["sanction_letter_url"]; got != "/documents/sanction_letter.pdf" {
		t.Errorf("sanction_letter_url = %v", got)
	}
}

func TestSanctionRejects(t *testing.T) {
	app := sampleApp()
	notEligible := false
	app.Eligible = &notEligible

	result := Sanction(app, "")

	if result.NextStatus != domain.StatusRejected {
		t.Fatalf("next status = %s", result.NextStatus)
	}
	if result.Action != ActionApplicationRejected {
		t.Errorf("action = %q", result.Action)
	}
	if got := result.Metadata["sanction_letter_url"]; got != nil {
		t.Errorf("sanction_letter_url = %v, want nil", got)
	}
}

func TestSanctionTreatsMissingEligibilityAsRejection(t *testing.T) {
	result := Sanction(sampleApp(), "")
	if result.NextStatus != domain.StatusRejected {
		t.Fatalf("next status = %s", result.NextStatus)
	}
}
