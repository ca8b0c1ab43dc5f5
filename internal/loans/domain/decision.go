package domain

const (
	// MinCreditScore is the minimum score for an eligible application.
	MinCreditScore = 650
	// CreditScoreSpread is the width of the simulated score range above MinCreditScore.
	CreditScoreSpread = 200
	// IncomeMultiplier caps the eligible amount at this multiple of monthly income.
	IncomeMultiplier = 60
	// BaseInterestRate is the annual rate floor quoted by the sales stage, in percent.
	BaseInterestRate = 10.5
	// InterestRateSpread is the width of the quoted rate range above the base, in percent.
	InterestRateSpread = 2.0
	// DebtToIncomeRatio is the illustrative DTI figure recorded by underwriting.
	DebtToIncomeRatio = 0.35
	// DefaultSanctionLetterPath is the letter location recorded when no
	// artifact store is configured.
	DefaultSanctionLetterPath = "/documents/sanction_letter.pdf"
)

// Eligibility is the underwriting stage's decision for an application.
type Eligibility struct {
	Eligible          bool
	MaxEligibleAmount int64
	RecommendedTenure int
}

// Evaluate applies the underwriting rule: the requested amount must not
// exceed IncomeMultiplier times monthly income, and the credit score must
// meet MinCreditScore. The recommended tenure echoes the requested one.
func Evaluate(amount, monthlyIncome int64, creditScore, requestedTenure int) Eligibility {
	maxAmount := monthlyIncome * IncomeMultiplier
	return Eligibility{
		Eligible:          amount <= maxAmount && creditScore >= MinCreditScore,
		MaxEligibleAmount: maxAmount,
		RecommendedTenure: requestedTenure,
	}
}
