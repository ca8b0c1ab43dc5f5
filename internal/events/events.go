// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"loanflow_backend/platform/events"
	"loanflow_backend/platform/logger"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

// Re-export platform functions
var (
	NewBaseEvent = events.NewBaseEvent
)

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// =============================================================================
// Loan Application Events
// =============================================================================

// ApplicationSubmitted is published when a new loan application is created
// and its pipeline has been kicked off.
type ApplicationSubmitted struct {
	BaseEvent
	ApplicationID  uuid.UUID `json:"applicationId"`
	UserID         uuid.UUID `json:"userId"`
	Amount         int64     `json:"amount"`
	Purpose        string    `json:"purpose"`
	ApplicantEmail string    `json:"applicantEmail,omitempty"`
}

func (e ApplicationSubmitted) EventName() string { return "loans.application.submitted" }

// ApplicationStatusChanged is published whenever a stage moves an application
// to a new status, including the terminal sanctioned/rejected outcomes.
type ApplicationStatusChanged struct {
	BaseEvent
	ApplicationID  uuid.UUID `json:"applicationId"`
	UserID         uuid.UUID `json:"userId"`
	FromStatus     string    `json:"fromStatus"`
	ToStatus       string    `json:"toStatus"`
	AgentType      string    `json:"agentType"`
	ApplicantEmail string    `json:"applicantEmail,omitempty"`
}

func (e ApplicationStatusChanged) EventName() string { return "loans.application.status_changed" }

// AgentActivityRecorded is published when an agent appends an activity to the
// application's audit trail.
type AgentActivityRecorded struct {
	BaseEvent
	ApplicationID uuid.UUID `json:"applicationId"`
	UserID        uuid.UUID `json:"userId"`
	AgentType     string    `json:"agentType"`
	Action        string    `json:"action"`
}

func (e AgentActivityRecorded) EventName() string { return "loans.agent.activity_recorded" }

// ApplicationCancelled is published when an applicant withdraws an application
// before it reaches a terminal status.
type ApplicationCancelled struct {
	BaseEvent
	ApplicationID uuid.UUID `json:"applicationId"`
	UserID        uuid.UUID `json:"userId"`
}

func (e ApplicationCancelled) EventName() string { return "loans.application.cancelled" }

// ApplicationStalled is published by the reconciler when an application has
// made no progress past the configured threshold and is being re-driven.
type ApplicationStalled struct {
	BaseEvent
	ApplicationID uuid.UUID `json:"applicationId"`
	UserID        uuid.UUID `json:"userId"`
	Status        string    `json:"status"`
	NextAgent     string    `json:"nextAgent"`
}

func (e ApplicationStalled) EventName() string { return "loans.application.stalled" }
