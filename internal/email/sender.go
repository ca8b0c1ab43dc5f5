// Package email delivers applicant-facing notifications.
package email

import (
	"context"

	"loanflow_backend/platform/config"
	"loanflow_backend/platform/logger"
)

// Attachment is a file attached to an outgoing email.
type Attachment struct {
	FileName string
	Content  []byte
}

// Sender delivers loan decision emails to applicants.
type Sender interface {
	// SendDecisionEmail notifies the applicant of a terminal decision.
	// status is the final application status (sanctioned or rejected).
	SendDecisionEmail(ctx context.Context, toEmail, applicationID, status, statusURL string, attachments ...Attachment) error
}

// NewSender returns the configured sender: SMTP when email is enabled,
// otherwise a no-op that only logs.
func NewSender(cfg config.EmailConfig, log *logger.Logger) Sender {
	if !cfg.GetEmailEnabled() {
		return &NoopSender{log: log}
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(), cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(), cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(), cfg.GetEmailFromName(),
	)
}

// NoopSender drops emails, logging what would have been sent. Used in
// development and when SMTP is not configured.
type NoopSender struct {
	log *logger.Logger
}

func (n *NoopSender) SendDecisionEmail(ctx context.Context, toEmail, applicationID, status, statusURL string, attachments ...Attachment) error {
	n.log.Info("email disabled, decision email dropped",
		"to", toEmail, "application_id", applicationID, "status", status)
	return nil
}
