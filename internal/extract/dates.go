package extract

import (
	"regexp"
	"strconv"
	"time"
)

// DateCandidate is a recognized date with its deadline classification and
// the exact matched text span. The span is needed to strip the date out of
// its line when deriving a name.
type DateCandidate struct {
	When     time.Time
	Deadline bool
	Span     string
}

// deadlineContextRE matches expiry/best-before/due vocabulary on lines
// preceding a date, used to retroactively reclassify a match as a deadline
// when the label sits on a line above the date.
var deadlineContextRE = regexp.MustCompile(`(?i)\b(?:mindesthaltbarkeitsdatum|mindestens\s+haltbar|haltbar\s+bis|zu\s+verbrauchen|verbrauchen\s+bis|mhd|ablaufdatum|g[uü]ltig\s+bis|f[aä]llig|zahlbar\s+bis|best\s+before|use\s+by|expir(?:y|es|ation)|valid\s+until|due\s+(?:by|on|date)|return\s+by|pay\s+until)\b`)

// deadlineTrailerRE matches a trailing "by:" / "bis:" marker, the other
// shape a label line above a date commonly takes.
var deadlineTrailerRE = regexp.MustCompile(`(?i)\b(?:by|bis)\s*:\s*$`)

// matchDate applies the ordered date rules to a single line and returns the
// first valid match. First-match-wins, not best-match: rule order is the
// precedence.
func matchDate(line string, now time.Time, rules []DateRule) (DateCandidate, bool) {
	for i := range rules {
		rule := &rules[i]
		for _, loc := range rule.re.FindAllStringSubmatchIndex(line, -1) {
			cand, ok := candidateFromMatch(rule, line, loc, now)
			if ok {
				return cand, true
			}
		}
	}
	return DateCandidate{}, false
}

// candidateFromMatch turns one regexp match into a DateCandidate, rejecting
// matches whose numbers do not form a real calendar date. loc is the result
// of FindAllStringSubmatchIndex: pairs of byte offsets, full match first.
func candidateFromMatch(rule *DateRule, line string, loc []int, now time.Time) (DateCandidate, bool) {
	group := func(n int) string {
		if 2*n+1 >= len(loc) || loc[2*n] < 0 {
			return ""
		}
		return line[loc[2*n]:loc[2*n+1]]
	}

	var day, month, year int
	switch rule.Layout {
	case LayoutDMY:
		day, _ = strconv.Atoi(group(1))
		month, _ = strconv.Atoi(group(2))
		year = expandYear(group(3))
	case LayoutMDY:
		month, _ = strconv.Atoi(group(1))
		day, _ = strconv.Atoi(group(2))
		year = expandYear(group(3))
	case LayoutYMD:
		year = expandYear(group(1))
		month, _ = strconv.Atoi(group(2))
		day, _ = strconv.Atoi(group(3))
	case LayoutDM:
		// Yearless forms must not eat the day.month prefix of a longer
		// dated form; reject when the match is directly followed by a
		// digit (RE2 has no lookahead, so the guard lives here).
		if end := loc[1]; end < len(line) && line[end] >= '0' && line[end] <= '9' {
			return DateCandidate{}, false
		}
		day, _ = strconv.Atoi(group(1))
		month, _ = strconv.Atoi(group(2))
		// Dates without a year always use the current year. Deliberately
		// never advanced to next year when the result is already past.
		year = now.Year()
	}

	if !validDate(year, month, day) {
		return DateCandidate{}, false
	}

	return DateCandidate{
		When:     time.Date(year, time.Month(month), day, 0, 0, 0, 0, now.Location()),
		Deadline: rule.Deadline,
		Span:     line[loc[0]:loc[1]],
	}, true
}

// expandYear parses a 2- or 4-digit year string; two-digit years are
// interpreted as 2000+YY.
func expandYear(s string) int {
	y, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	if len(s) == 2 {
		return 2000 + y
	}
	return y
}

// validDate rejects impossible calendar values (month 13, day 32, Feb 30).
// An invalid match lets lower-precedence rules have their turn rather than
// producing a normalized wrong date.
func validDate(year, month, day int) bool {
	if year < 1000 || month < 1 || month > 12 || day < 1 || day > 31 {
		return false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return int(t.Month()) == month && t.Day() == day
}

// hasDeadlineContext inspects up to the 3 lines preceding idx for deadline
// vocabulary or a trailing "by:"/"bis:" marker. Handles receipts and labels
// where the expiry wording sits on its own line above the date.
func hasDeadlineContext(lines []string, idx int) bool {
	for back := 1; back <= 3; back++ {
		i := idx - back
		if i < 0 {
			break
		}
		if deadlineContextRE.MatchString(lines[i]) || deadlineTrailerRE.MatchString(lines[i]) {
			return true
		}
	}
	return false
}
