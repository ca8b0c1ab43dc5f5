package agent

import (
	"math/rand"
	"sync"

	"loanflow_backend/internal/loans/domain"
)

// RateQuoter produces the annual interest rate offered by the sales stage.
type RateQuoter interface {
	QuoteRate() float64
}

// IdentityVerifier performs the KYC checks for the verification stage.
type IdentityVerifier interface {
	VerifyIdentity(taxID, phone string) KYCResult
}

// CreditBureau produces a credit score for the underwriting stage.
type CreditBureau interface {
	Score(taxID string) int
}

// KYCResult is the outcome of the verification stage's identity checks.
type KYCResult struct {
	PANVerified     bool
	AadhaarVerified bool
	CIBILCheck      string
}

// Sources bundles the external inputs the stage agents draw on. In
// production these are simulated; tests substitute deterministic fakes.
type Sources struct {
	Rates  RateQuoter
	KYC    IdentityVerifier
	Bureau CreditBureau
}

// NewSimulatedSources returns sources backed by a shared seeded PRNG.
func NewSimulatedSources(seed int64) Sources {
	rng := &lockedRand{rng: rand.New(rand.NewSource(seed))}
	return Sources{
		Rates:  simulatedRates{rng},
		KYC:    simulatedKYC{},
		Bureau: simulatedBureau{rng},
	}
}

// lockedRand guards a rand.Rand for use from concurrent worker goroutines.
type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (l *lockedRand) float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.Float64()
}

type simulatedRates struct {
	rng *lockedRand
}

func (s simulatedRates) QuoteRate() float64 {
	return domain.BaseInterestRate + s.rng.float64()*domain.InterestRateSpread
}

// simulatedKYC always passes; the pipeline has no KYC failure path.
type simulatedKYC struct{}

func (simulatedKYC) VerifyIdentity(taxID, phone string) KYCResult {
	return KYCResult{
		PANVerified:     true,
		AadhaarVerified: true,
		CIBILCheck:      "passed",
	}
}

type simulatedBureau struct {
	rng *lockedRand
}

func (s simulatedBureau) Score(taxID string) int {
	return domain.MinCreditScore + int(s.rng.float64()*float64(domain.CreditScoreSpread))
}
