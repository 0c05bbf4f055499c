package admin

import (
	"errors"
	"testing"

	"github.com/alkaman93/orgazm/internal/domain"
)

func TestParse_AnswerCommands(t *testing.T) {
	cases := []struct {
		line string
		kind domain.Kind
		id   int64
		text string
	}{
		{"answer-verification 7 Approved, deal is safe", domain.KindVerification, 7, "Approved, deal is safe"},
		{"answer-complaint 3 Refund issued", domain.KindComplaint, 3, "Refund issued"},
		{"answer-purchase 12 Payment received, vouch is live", domain.KindPurchase, 12, "Payment received, vouch is live"},
	}
	for _, tc := range cases {
		cmd, err := Parse(tc.line)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tc.line, err)
		}
		if cmd.Kind != tc.kind || cmd.ID != tc.id || cmd.Text != tc.text {
			t.Errorf("Parse(%q) = %+v", tc.line, cmd)
		}
	}
}

func TestParse_BareCommands(t *testing.T) {
	for _, line := range []string{CmdListPending, CmdStats, CmdSetBanner, CmdRemoveBanner} {
		cmd, err := Parse(line)
		if err != nil {
			t.Fatalf("Parse(%q): %v", line, err)
		}
		if cmd.Name != line {
			t.Errorf("Parse(%q).Name = %q", line, cmd.Name)
		}
	}
}

func TestParse_VerdictTextIsOptional(t *testing.T) {
	cmd, err := Parse("approve-verification 4")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cmd.ID != 4 || cmd.Text != "" {
		t.Errorf("unexpected command: %+v", cmd)
	}

	cmd, err = Parse("reject-verification 4 known scammer")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cmd.Text != "known scammer" {
		t.Errorf("unexpected text: %q", cmd.Text)
	}
}

func TestParse_UsageErrors(t *testing.T) {
	lines := []string{
		"answer-verification",          // missing id
		"answer-verification seven ok", // id not decimal
		"answer-verification -3 ok",    // id not positive
		"answer-verification 0 ok",     // id not positive
		"answer-verification 7",        // missing response text
		"answer-complaint 7 ",          // missing response text
	}
	for _, line := range lines {
		_, err := Parse(line)
		var usageErr *UsageError
		if !errors.As(err, &usageErr) {
			t.Errorf("Parse(%q): expected UsageError, got %v", line, err)
		}
	}
}

func TestParse_UnknownAndCaseSensitive(t *testing.T) {
	lines := []string{
		"hello there",
		"Answer-Verification 7 ok", // command tokens are case-sensitive
		"ANSWER-COMPLAINT 1 x",
		"",
	}
	for _, line := range lines {
		if _, err := Parse(line); !errors.Is(err, ErrUnknown) {
			t.Errorf("Parse(%q): expected ErrUnknown, got %v", line, err)
		}
	}
}
