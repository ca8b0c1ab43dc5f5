package notification

import (
	"context"
	"strings"
	"testing"

	"loanflow_backend/internal/email"
	"loanflow_backend/internal/events"
	"loanflow_backend/platform/logger"

	"github.com/google/uuid"
)

type sentEmail struct {
	to            string
	applicationID string
	status        string
	statusURL     string
}

type fakeSender struct {
	sent []sentEmail
}

func (f *fakeSender) SendDecisionEmail(ctx context.Context, toEmail, applicationID, status, statusURL string, attachments ...email.Attachment) error {
	f.sent = append(f.sent, sentEmail{toEmail, applicationID, status, statusURL})
	return nil
}

type testNotificationConfig struct{}

func (testNotificationConfig) GetAppBaseURL() string { return "https://loans.example.com" }

func newTestModule(sender *fakeSender) *Module {
	return New(sender, testNotificationConfig{}, logger.New("test"))
}

func statusChanged(to string, email string) events.ApplicationStatusChanged {
	return events.ApplicationStatusChanged{
		BaseEvent:      events.NewBaseEvent(),
		ApplicationID:  uuid.New(),
		UserID:         uuid.New(),
		FromStatus:     "underwriting",
		ToStatus:       to,
		AgentType:      "sanction",
		ApplicantEmail: email,
	}
}

func TestDecisionEmailSentOnSanction(t *testing.T) {
	sender := &fakeSender{}
	m := newTestModule(sender)

	event := statusChanged("sanctioned", "applicant@example.com")
	if err := m.Handle(context.Background(), event); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("got %d emails, want 1", len(sender.sent))
	}
	sent := sender.sent[0]
	if sent.to != "applicant@example.com" {
		t.Errorf("to = %s", sent.to)
	}
	if sent.status != "sanctioned" {
		t.Errorf("status = %s", sent.status)
	}
	if !strings.Contains(sent.statusURL, event.ApplicationID.String()) {
		t.Errorf("status url = %s, missing application id", sent.statusURL)
	}
}

func TestDecisionEmailSentOnRejection(t *testing.T) {
	sender := &fakeSender{}
	m := newTestModule(sender)

	if err := m.Handle(context.Background(), statusChanged("rejected", "applicant@example.com")); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(sender.sent) != 1 || sender.sent[0].status != "rejected" {
		t.Fatalf("sent = %+v", sender.sent)
	}
}

func TestNoEmailForIntermediateStatus(t *testing.T) {
	sender := &fakeSender{}
	m := newTestModule(sender)

	if err := m.Handle(context.Background(), statusChanged("kyc_pending", "applicant@example.com")); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("no email expected for intermediate status, got %+v", sender.sent)
	}
}

func TestNoEmailWithoutAddress(t *testing.T) {
	sender := &fakeSender{}
	m := newTestModule(sender)

	if err := m.Handle(context.Background(), statusChanged("sanctioned", "")); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("no email expected without address, got %+v", sender.sent)
	}
}

func TestOtherEventsAreAccepted(t *testing.T) {
	m := newTestModule(&fakeSender{})
	ctx := context.Background()

	eventsToHandle := []events.Event{
		events.ApplicationSubmitted{BaseEvent: events.NewBaseEvent(), ApplicationID: uuid.New(), UserID: uuid.New()},
		events.AgentActivityRecorded{BaseEvent: events.NewBaseEvent(), ApplicationID: uuid.New(), UserID: uuid.New(), AgentType: "sales"},
		events.ApplicationCancelled{BaseEvent: events.NewBaseEvent(), ApplicationID: uuid.New(), UserID: uuid.New()},
		events.ApplicationStalled{BaseEvent: events.NewBaseEvent(), ApplicationID: uuid.New(), UserID: uuid.New(), Status: "initiated", NextAgent: "sales"},
	}
	for _, event := range eventsToHandle {
		if err := m.Handle(ctx, event); err != nil {
			t.Fatalf("Handle(%s): %v", event.EventName(), err)
		}
	}
}
