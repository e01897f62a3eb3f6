package notifier

import (
	"html"
	"strconv"
	"strings"
)

// memoDisplayLimit bounds how much of an attacker-controlled memo ends
// up in a chat message.
const memoDisplayLimit = 80

// FormatSats renders an amount with thousands separators and the unit
// suffix, e.g. 1234567 -> "1,234,567 sats".
func FormatSats(sats int64) string {
	return groupDigits(sats) + " sats"
}

func groupDigits(n int64) string {
	s := strconv.FormatInt(n, 10)

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// SanitizeMemo prepares a provider-supplied memo for display: banned
// words are masked, the text is truncated to a bounded length and HTML
// metacharacters are escaped so a memo cannot break message markup.
func SanitizeMemo(memo string, banned []string) string {
	memo = strings.TrimSpace(memo)
	if memo == "" {
		return "No memo"
	}

	for _, word := range banned {
		memo = maskWord(memo, word)
	}

	if runes := []rune(memo); len(runes) > memoDisplayLimit {
		memo = string(runes[:memoDisplayLimit]) + "…"
	}

	return html.EscapeString(memo)
}

// maskWord scans rune windows so case folding never desyncs match
// offsets from the original text.
func maskWord(text, word string) string {
	target := []rune(word)
	if len(target) == 0 {
		return text
	}
	mask := strings.Repeat("*", len(target))

	runes := []rune(text)
	var b strings.Builder
	for i := 0; i < len(runes); {
		if i+len(target) <= len(runes) && strings.EqualFold(string(runes[i:i+len(target)]), word) {
			b.WriteString(mask)
			i += len(target)
			continue
		}
		b.WriteRune(runes[i])
		i++
	}
	return b.String()
}
