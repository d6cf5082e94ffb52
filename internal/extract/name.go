package extract

import (
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// maxCombinedNameLength caps a name built from the date line plus one
// adjacent context line.
const maxCombinedNameLength = 80

// Noise-line filters. Receipts and food labels surround the date with
// prices, weights, batch codes and metadata that must never become an event
// name.
var (
	priceRE  = regexp.MustCompile(`(?i)(?:\d+[.,]\d{2}\s*(?:€|eur|usd|chf|\$)|[€$]\s*\d)`)
	weightRE = regexp.MustCompile(`(?i)\b\d+(?:[.,]\d+)?\s*(?:kg|g|mg|ml|cl|l|oz|lbs?)\b`)
	// A single long uppercase/digit token is almost always a lot or batch code.
	batchCodeRE = regexp.MustCompile(`^[A-Z0-9/-]{6,}$`)
	metaLabelRE = regexp.MustCompile(`(?i)^(?:art(?:ikel)?[-. ]?nr|lot|charge|batch|tel|fax|www\.|https?:|ean|pzn|ust|mwst|iban|bic|steuer|rechnung|invoice|receipt|beleg|kassenbon|bon[-. ]?nr|kunden[-. ]?nr|filiale)\b`)
)

// isValidNameLine reports whether a line may contribute to an event name:
// at least 3 characters and not itself a date, a time, a metadata label, a
// price/weight token or a batch code.
func isValidNameLine(line string, now time.Time, rules *Rules) bool {
	trimmed := strings.TrimSpace(line)
	if utf8.RuneCountInString(trimmed) < 3 {
		return false
	}
	if _, ok := matchDate(trimmed, now, rules.Dates); ok {
		return false
	}
	if _, ok := matchTime(trimmed, rules.Times); ok {
		return false
	}
	if metaLabelRE.MatchString(trimmed) || priceRE.MatchString(trimmed) || weightRE.MatchString(trimmed) {
		return false
	}
	if batchCodeRE.MatchString(trimmed) {
		return false
	}
	return true
}

var spaceRunRE = regexp.MustCompile(`\s+`)

// cleanNameFragment collapses whitespace runs, strips leading/trailing
// punctuation and capitalizes the first letter.
func cleanNameFragment(s string) string {
	s = spaceRunRE.ReplaceAllString(s, " ")
	s = strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r) || r == '|' || r == '*'
	})
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// deriveName builds an event name from the line containing the date and its
// neighbors. The matched date span (and time span, if any) are stripped
// first; if the remainder carries enough signal it becomes the name,
// optionally prefixed by one adjacent context line. Otherwise up to 3
// nearby valid lines are joined, lines before the date first, since labels
// usually precede the date they describe.
func deriveName(lines []string, idx int, dateSpan, timeSpan string, now time.Time, rules *Rules) string {
	base := lines[idx]
	if dateSpan != "" {
		base = strings.Replace(base, dateSpan, " ", 1)
	}
	if timeSpan != "" {
		base = strings.Replace(base, timeSpan, " ", 1)
	}
	base = cleanNameFragment(base)

	if utf8.RuneCountInString(base) >= 3 {
		// Try to prefix one adjacent context line, closest first with a
		// preference for lines above.
		for _, off := range []int{-1, 1, -2, 2, -3} {
			i := idx + off
			if i < 0 || i >= len(lines) || !isValidNameLine(lines[i], now, rules) {
				continue
			}
			combined := cleanNameFragment(strings.TrimSpace(lines[i])) + " " + base
			if utf8.RuneCountInString(combined) <= maxCombinedNameLength {
				return combined
			}
		}
		return base
	}

	// The date line itself yields nothing usable: join up to 3 nearby valid
	// lines, before-lines first.
	var parts []string
	for _, off := range []int{-1, -2, -3, 1, 2} {
		i := idx + off
		if i < 0 || i >= len(lines) || !isValidNameLine(lines[i], now, rules) {
			continue
		}
		parts = append(parts, strings.TrimSpace(lines[i]))
		if len(parts) == 3 {
			break
		}
	}
	return cleanNameFragment(strings.Join(parts, " "))
}

// deriveNotes builds free-text notes from at most one line immediately
// before and one immediately after the date line. Lines containing a date
// themselves are excluded; they are (or were) candidates of their own.
func deriveNotes(lines []string, idx int, now time.Time, rules *Rules) string {
	var parts []string
	for _, i := range []int{idx - 1, idx + 1} {
		if i < 0 || i >= len(lines) {
			continue
		}
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue
		}
		if _, ok := matchDate(trimmed, now, rules.Dates); ok {
			continue
		}
		parts = append(parts, trimmed)
	}
	return strings.Join(parts, "\n")
}
