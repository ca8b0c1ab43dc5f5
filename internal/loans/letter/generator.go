// Package letter renders sanction letters for approved applications.
package letter

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"loanflow_backend/internal/loans/repository"

	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 256

var letterTemplate = template.Must(template.New("sanction").Parse(`LOAN SANCTION LETTER

Date: {{.Date}}
Application ID: {{.ApplicationID}}

Dear Applicant,

We are pleased to inform you that your loan application has been sanctioned.

  Sanctioned Amount : {{.Amount}}
  Tenure            : {{.TenureMonths}} months
  Purpose           : {{.Purpose}}
  Credit Score      : {{.CreditScore}}

This sanction is valid for 30 days from the date of issue. Disbursal is
subject to execution of the loan agreement.

Scan the attached QR code to track your application status.

LoanFlow Lending
`))

// Letter is a rendered sanction letter plus a QR code linking to the
// application's status page.
type Letter struct {
	Content     []byte
	ContentType string
	QRCode      []byte
}

// Generate renders the sanction letter for an approved application.
// statusURL is the dashboard link encoded in the QR code.
func Generate(app repository.Application, statusURL string) (Letter, error) {
	score := 0
	if app.CreditScore != nil {
		score = *app.CreditScore
	}

	var buf bytes.Buffer
	err := letterTemplate.Execute(&buf, struct {
		Date          string
		ApplicationID string
		Amount        int64
		TenureMonths  int
		Purpose       string
		CreditScore   int
	}{
		Date:          time.Now().Format("02 Jan 2006"),
		ApplicationID: app.ID.String(),
		Amount:        app.Amount,
		TenureMonths:  app.TenureMonths,
		Purpose:       app.Purpose,
		CreditScore:   score,
	})
	if err != nil {
		return Letter{}, fmt.Errorf("render sanction letter: %w", err)
	}

	qr, err := qrcode.Encode(statusURL, qrcode.Medium, qrSize)
	if err != nil {
		return Letter{}, fmt.Errorf("encode status qr code: %w", err)
	}

	return Letter{
		Content:     buf.Bytes(),
		ContentType: "text/plain; charset=utf-8",
		QRCode:      qr,
	}, nil
}
