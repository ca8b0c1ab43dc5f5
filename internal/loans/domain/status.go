// Package domain holds the loan pipeline's core types and rules:
// statuses, agent ordering, and the underwriting decision.
package domain

// Status is the lifecycle state of a loan application.
type Status string

const (
	StatusInitiated            Status = "initiated"
	StatusKYCPending           Status = "kyc_pending"
	StatusVerificationComplete Status = "verification_complete"
	StatusUnderwriting         Status = "underwriting"
	StatusSanctioned           Status = "sanctioned"
	StatusRejected             Status = "rejected"
	StatusCancelled            Status = "cancelled"
)

// AgentType identifies a pipeline stage agent.
type AgentType string

const (
	AgentMaster       AgentType = "master"
	AgentSales        AgentType = "sales"
	AgentVerification AgentType = "verification"
	AgentUnderwriting AgentType = "underwriting"
	AgentSanction     AgentType = "sanction"
)

// StageOrder is the fixed execution order of the async stages.
// Master runs synchronously at submission and is not part of the chain.
var StageOrder = []AgentType{AgentSales, AgentVerification, AgentUnderwriting, AgentSanction}

// expectedStatus maps each async agent to the status an application must be
// in before that agent may run. A mismatch means the transition is out of
// order (already ran, superseded, or cancelled) and must be skipped.
var expectedStatus = map[AgentType]Status{
	AgentSales:        StatusInitiated,
	AgentVerification: StatusKYCPending,
	AgentUnderwriting: StatusVerificationComplete,
	AgentSanction:     StatusUnderwriting,
}

// nextAgent maps each agent to the one scheduled after it.
var nextAgent = map[AgentType]AgentType{
	AgentMaster:       AgentSales,
	AgentSales:        AgentVerification,
	AgentVerification: AgentUnderwriting,
	AgentUnderwriting: AgentSanction,
}

// ExpectedStatus returns the status an application must hold for the given
// agent to run, and false for unknown or non-chained agents.
func ExpectedStatus(agent AgentType) (Status, bool) {
	s, ok := expectedStatus[agent]
	return s, ok
}

// NextAgent returns the agent scheduled after the given one, and false when
// the given agent is the last in the chain.
func NextAgent(agent AgentType) (AgentType, bool) {
	n, ok := nextAgent[agent]
	return n, ok
}

// AgentForStatus returns the agent whose turn it is for an application in
// the given status, and false for terminal or unknown statuses. Used by the
// reconciler to re-drive stalled applications.
func AgentForStatus(status Status) (AgentType, bool) {
	for agent, expected := range expectedStatus {
		if expected == status {
			return agent, true
		}
	}
	return "", false
}

// IsTerminal reports whether a status admits no further transitions.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusSanctioned, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// IsValid reports whether s is a known status value.
func (s Status) IsValid() bool {
	switch s {
	case StatusInitiated, StatusKYCPending, StatusVerificationComplete,
		StatusUnderwriting, StatusSanctioned, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// AllowedTenures are the tenure options, in months, an applicant may request.
var AllowedTenures = []int{6, 12, 18, 24, 36, 48, 60}

// IsAllowedTenure reports whether the tenure is one of the discrete options.
func IsAllowedTenure(months int) bool {
	for _, t := range AllowedTenures {
		if t == months {
			return true
		}
	}
	return false
}

// KnownPurposes is the enumerated purpose set offered by the application
// form. "Other" is the catch-all.
var KnownPurposes = []string{
	"Home Renovation",
	"Wedding",
	"Education",
	"Medical Emergency",
	"Debt Consolidation",
	"Business Expansion",
	"Travel",
	"Vehicle Purchase",
	"Other",
}

// IsKnownPurpose reports whether the purpose is one of the enumerated options.
func IsKnownPurpose(purpose string) bool {
	for _, p := range KnownPurposes {
		if p == purpose {
			return true
		}
	}
	return false
}
