package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

const (
	subjectSanctioned = "Your loan application has been sanctioned"
	subjectRejected   = "Update on your loan application"
)

var decisionTemplate = template.Must(template.New("decision").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #1f2937;">
  <h2>{{.Heading}}</h2>
  <p>{{.Body}}</p>
  <p>Application reference: <strong>{{.ApplicationID}}</strong></p>
  {{if .StatusURL}}<p><a href="{{.StatusURL}}">View your application</a></p>{{end}}
  <p>LoanFlow Lending</p>
</body>
</html>`))

type decisionEmailData struct {
	Heading       string
	Body          string
	ApplicationID string
	StatusURL     string
}

// SMTPSender delivers emails over a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a new SMTPSender with the given SMTP credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

// SendDecisionEmail notifies the applicant of the terminal decision.
func (s *SMTPSender) SendDecisionEmail(ctx context.Context, toEmail, applicationID, status, statusURL string, attachments ...Attachment) error {
	subject := subjectRejected
	data := decisionEmailData{
		Heading:       "Application update",
		Body:          "After careful review we are unable to approve your loan application at this time.",
		ApplicationID: applicationID,
		StatusURL:     statusURL,
	}
	if status == "sanctioned" {
		subject = subjectSanctioned
		data.Heading = "Congratulations!"
		data.Body = "Your loan application has been sanctioned. Your sanction letter is available on your dashboard."
	}

	var buf bytes.Buffer
	if err := decisionTemplate.Execute(&buf, data); err != nil {
		return fmt.Errorf("render decision email: %w", err)
	}

	return s.send(ctx, toEmail, subject, buf.String(), attachments...)
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string, attachments ...Attachment) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	for _, att := range attachments {
		msg.AttachReader(att.FileName, bytes.NewReader(att.Content))
	}

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}
