// Package notification pushes pipeline changes to applicants: SSE streams
// for the dashboard and decision emails on terminal statuses.
package notification

import (
	"context"
	"fmt"

	"loanflow_backend/internal/email"
	"loanflow_backend/internal/events"
	apphttp "loanflow_backend/internal/http"
	"loanflow_backend/internal/notification/sse"
	"loanflow_backend/platform/config"
	"loanflow_backend/platform/httpkit"
	"loanflow_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Module wires domain events to SSE streams and decision emails.
type Module struct {
	sender email.Sender
	sse    *sse.Service
	cfg    config.NotificationConfig
	log    *logger.Logger
}

// New creates the notification module.
func New(sender email.Sender, cfg config.NotificationConfig, log *logger.Logger) *Module {
	return &Module{
		sender: sender,
		sse:    sse.New(),
		cfg:    cfg,
		log:    log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "notification"
}

// SSE returns the SSE service for shutdown handling.
func (m *Module) SSE() *sse.Service {
	return m.sse
}

// RegisterRoutes mounts the event stream endpoint.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/notifications/stream", m.sse.Handler(func(c *gin.Context) (uuid.UUID, bool) {
		identity := httpkit.GetIdentity(c)
		if !identity.IsAuthenticated() {
			return uuid.Nil, false
		}
		return identity.UserID(), true
	}))
}

// RegisterHandlers subscribes to pipeline events.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.ApplicationSubmitted{}.EventName(), m)
	bus.Subscribe(events.ApplicationStatusChanged{}.EventName(), m)
	bus.Subscribe(events.AgentActivityRecorded{}.EventName(), m)
	bus.Subscribe(events.ApplicationCancelled{}.EventName(), m)
	bus.Subscribe(events.ApplicationStalled{}.EventName(), m)
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.ApplicationSubmitted:
		m.sse.Publish(e.UserID, sse.Event{
			Type:          sse.EventApplicationUpdate,
			ApplicationID: e.ApplicationID,
			Message:       "Application submitted",
		})
		return nil
	case events.ApplicationStatusChanged:
		return m.handleStatusChanged(ctx, e)
	case events.AgentActivityRecorded:
		m.sse.Publish(e.UserID, sse.Event{
			Type:          sse.EventActivityUpdate,
			ApplicationID: e.ApplicationID,
			Message:       e.Action,
			Data: map[string]interface{}{
				"agentType": e.AgentType,
			},
		})
		return nil
	case events.ApplicationCancelled:
		m.sse.Publish(e.UserID, sse.Event{
			Type:          sse.EventApplicationUpdate,
			ApplicationID: e.ApplicationID,
			Message:       "Application cancelled",
		})
		return nil
	case events.ApplicationStalled:
		m.log.Warn("application stalled",
			"application_id", e.ApplicationID, "status", e.Status, "next_agent", e.NextAgent)
		return nil
	default:
		return nil
	}
}

func (m *Module) handleStatusChanged(ctx context.Context, e events.ApplicationStatusChanged) error {
	m.sse.Publish(e.UserID, sse.Event{
		Type:          sse.EventApplicationUpdate,
		ApplicationID: e.ApplicationID,
		Message:       e.ToStatus,
		Data: map[string]interface{}{
			"fromStatus": e.FromStatus,
			"toStatus":   e.ToStatus,
			"agentType":  e.AgentType,
		},
	})

	if e.ToStatus != "sanctioned" && e.ToStatus != "rejected" {
		return nil
	}
	if e.ApplicantEmail == "" {
		m.log.Info("no applicant email on file, decision email skipped",
			"application_id", e.ApplicationID)
		return nil
	}

	statusURL := fmt.Sprintf("%s/applications/%s", m.cfg.GetAppBaseURL(), e.ApplicationID)
	if err := m.sender.SendDecisionEmail(ctx, e.ApplicantEmail, e.ApplicationID.String(), e.ToStatus, statusURL); err != nil {
		m.log.Error("send decision email",
			"application_id", e.ApplicationID, "error", err)
		return err
	}
	return nil
}

// Compile-time checks
var (
	_ apphttp.Module = (*Module)(nil)
	_ events.Handler = (*Module)(nil)
)
