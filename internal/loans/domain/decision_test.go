package domain

import "testing"

func TestEvaluateEligibleWhenAmountAndScoreQualify(t *testing.T) {
	// income 50,000 caps eligibility at 3,000,000; requested 2,000,000 with a
	// 700 score qualifies.
	result := Evaluate(2_000_000, 50_000, 700, 12)

	if !result.Eligible {
		t.Fatal("expected eligible")
	}
	if result.MaxEligibleAmount != 3_000_000 {
		t.Errorf("max eligible = %d, want 3000000", result.MaxEligibleAmount)
	}
	if result.RecommendedTenure != 12 {
		t.Errorf("recommended tenure = %d, want 12", result.RecommendedTenure)
	}
}

func TestEvaluateRejectsWhenAmountExceedsIncomeCap(t *testing.T) {
	// income 20,000 caps eligibility at 1,200,000; requested 2,000,000 fails
	// regardless of score.
	result := Evaluate(2_000_000, 20_000, 850, 24)

	if result.Eligible {
		t.Fatal("expected not eligible")
	}
	if result.MaxEligibleAmount != 1_200_000 {
		t.Errorf("max eligible = %d, want 1200000", result.MaxEligibleAmount)
	}
}

func TestEvaluateRejectsWhenScoreBelowThreshold(t *testing.T) {
	result := Evaluate(100_000, 50_000, MinCreditScore-1, 12)
	if result.Eligible {
		t.Fatal("expected not eligible below minimum score")
	}

	result = Evaluate(100_000, 50_000, MinCreditScore, 12)
	if !result.Eligible {
		t.Fatal("expected eligible at exactly the minimum score")
	}
}

func TestEvaluateBoundaryAtExactIncomeCap(t *testing.T) {
	// amount exactly equal to income*multiplier is still eligible
	result := Evaluate(3_000_000, 50_000, 700, 36)
	if !result.Eligible {
		t.Fatal("amount equal to the cap should be eligible")
	}

	result = Evaluate(3_000_001, 50_000, 700, 36)
	if result.Eligible {
		t.Fatal("amount above the cap should not be eligible")
	}
}
