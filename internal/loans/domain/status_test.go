package domain

import "testing"

func TestExpectedStatusCoversEveryChainedAgent(t *testing.T) {
	for _, agent := range StageOrder {
		if _, ok := ExpectedStatus(agent); !ok {
			t.Errorf("no expected status for agent %s", agent)
		}
	}
	if _, ok := ExpectedStatus(AgentMaster); ok {
		t.Error("master is not a chained agent and should have no expected status")
	}
}

func TestNextAgentChain(t *testing.T) {
	cases := []struct {
		agent AgentType
		next  AgentType
		last  bool
	}{
		{AgentMaster, AgentSales, false},
		{AgentSales, AgentVerification, false},
		{AgentVerification, AgentUnderwriting, false},
		{AgentUnderwriting, AgentSanction, false},
		{AgentSanction, "", true},
	}

	for _, tc := range cases {
		next, ok := NextAgent(tc.agent)
		if tc.last {
			if ok {
				t.Errorf("NextAgent(%s) = %s, want none", tc.agent, next)
			}
			continue
		}
		if !ok || next != tc.next {
			t.Errorf("NextAgent(%s) = %s/%v, want %s", tc.agent, next, ok, tc.next)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	terminal := []Status{StatusSanctioned, StatusRejected, StatusCancelled}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}

	active := []Status{StatusInitiated, StatusKYCPending, StatusVerificationComplete, StatusUnderwriting}
	for _, s := range active {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestIsAllowedTenure(t *testing.T) {
	for _, months := range []int{6, 12, 18, 24, 36, 48, 60} {
		if !IsAllowedTenure(months) {
			t.Errorf("tenure %d should be allowed", months)
		}
	}
	for _, months := range []int{0, 7, 13, 72, -6} {
		if IsAllowedTenure(months) {
			t.Errorf("tenure %d should not be allowed", months)
		}
	}
}

func TestIsKnownPurpose(t *testing.T) {
	if !IsKnownPurpose("Education") {
		t.Error("Education should be a known purpose")
	}
	if !IsKnownPurpose("Other") {
		t.Error("Other should be a known purpose")
	}
	if IsKnownPurpose("Yacht") {
		t.Error("Yacht should not be a known purpose")
	}
}
