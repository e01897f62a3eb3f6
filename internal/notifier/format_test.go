package notifier_test

import (
	"strings"
	"testing"

	"github.com/satwatch/lnbits-tracker/internal/notifier"
)

func TestFormatSats(t *testing.T) {
	tests := []struct {
		sats int64
		want string
	}{
		{0, "0 sats"},
		{5, "5 sats"},
		{999, "999 sats"},
		{1000, "1,000 sats"},
		{1234567, "1,234,567 sats"},
		{-1234, "-1,234 sats"},
	}

	for _, tt := range tests {
		if got := notifier.FormatSats(tt.sats); got != tt.want {
			t.Errorf("FormatSats(%d) = %q, want %q", tt.sats, got, tt.want)
		}
	}
}

func TestSanitizeMemoEscapesMarkup(t *testing.T) {
	got := notifier.SanitizeMemo("<b>pwned</b> & more", nil)
	if strings.Contains(got, "<b>") {
		t.Fatalf("markup not escaped: %q", got)
	}
	if !strings.Contains(got, "&lt;b&gt;") || !strings.Contains(got, "&amp;") {
		t.Fatalf("expected escaped entities, got %q", got)
	}
}

func TestSanitizeMemoTruncates(t *testing.T) {
	long := strings.Repeat("x", 500)
	got := notifier.SanitizeMemo(long, nil)
	if len(got) > 200 {
		t.Fatalf("memo not bounded, len=%d", len(got))
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("expected truncation marker, got %q", got)
	}
}

func TestSanitizeMemoEmpty(t *testing.T) {
	if got := notifier.SanitizeMemo("   ", nil); got != "No memo" {
		t.Fatalf("expected placeholder for empty memo, got %q", got)
	}
}

// Case mapping can change rune byte length (Ⱥ is 2 bytes, its
// lowercase ⱥ is 3), so masking must not index the original text with
// offsets found in a lowercased copy.
func TestSanitizeMemoMasksMultibyteMemo(t *testing.T) {
	got := notifier.SanitizeMemo("ȺȺȺȺspam tip", []string{"spam"})
	if strings.Contains(strings.ToLower(got), "spam") {
		t.Fatalf("banned word not masked: %q", got)
	}
	if !strings.Contains(got, "ȺȺȺȺ****") {
		t.Fatalf("expected surrounding text preserved around mask, got %q", got)
	}

	got = notifier.SanitizeMemo("İİspam", []string{"spam"})
	if strings.Contains(strings.ToLower(got), "spam") {
		t.Fatalf("banned word not masked after shrinking case map: %q", got)
	}
}

func TestSanitizeMemoMasksBannedWords(t *testing.T) {
	got := notifier.SanitizeMemo("Thanks SpamCoin, great SPAMCOIN tip", []string{"spamcoin"})
	if strings.Contains(strings.ToLower(got), "spamcoin") {
		t.Fatalf("banned word not masked: %q", got)
	}
	if !strings.Contains(got, "********") {
		t.Fatalf("expected mask characters, got %q", got)
	}
}
