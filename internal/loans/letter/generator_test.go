package letter

import (
	"bytes"
	"strings"
	"testing"

	"loanflow_backend/internal/loans/repository"

	"github.com/google/uuid"
)

func TestGenerateIncludesApplicationDetails(t *testing.T) {
	score := 712
	app := repository.Application{
		ID:           uuid.New(),
		Amount:       2_000_000,
		TenureMonths: 12,
		Purpose:      "Education",
		CreditScore:  &score,
	}

	result, err := Generate(app, "https://loans.example.com/applications/"+app.ID.String())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	content := string(result.Content)
	for _, want := range []string{app.ID.String(), "2000000", "12 months", "Education", "712"} {
		if !strings.Contains(content, want) {
			t.Errorf("letter missing %q", want)
		}
	}

	if len(result.QRCode) == 0 {
		t.Fatal("expected QR code bytes")
	}
	// PNG magic header
	if !bytes.HasPrefix(result.QRCode, []byte("\x89PNG")) {
		t.Error("QR code is not a PNG")
	}
}
