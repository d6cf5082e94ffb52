package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// contextWindow is the number of bytes scanned on each side of a natural
// match for deadline and subscription vocabulary.
const contextWindow = 200

// Priority weights for natural-stage candidates. Explicitly labelled
// subscription and due dates outrank weekday-qualified mentions.
const (
	prioStartingOn   = 10
	prioSubscription = 5
	prioDeadline     = 3
	prioWeekdayMatch = -5
)

// NaturalCandidate is a stage-two date candidate: a DateCandidate plus its
// position in the flattened text, a surrounding context window and a
// priority score used to break same-day ties.
type NaturalCandidate struct {
	DateCandidate
	Start    int
	End      int
	Window   string
	Priority int
}

// Context vocabulary for priority scoring. Scanned over the ±200 byte
// window around each match.
var (
	naturalDeadlineRE = regexp.MustCompile(`(?i)\b(?:verl[aä]ngert|verl[aä]ngerung|renew(?:al|s|ed)?|due|f[aä]llig|l[aä]uft\s+ab|expir(?:es?|y|ed|ation)|ablauf|k[uü]ndig(?:en|ung)|zahlbar\s+bis|pay\s+until|return\s+by)\b`)
	startingOnRE      = regexp.MustCompile(`(?i)\b(?:starting(?:\s+on)?|starts\s+on|ab\s+dem|beginnend\s+(?:am|ab)|beginnt\s+am)\b`)
	subscriptionRE    = regexp.MustCompile(`(?i)\b(?:subscription|abo(?:nnements?)?|membership|mitgliedschaft|renewal|verl[aä]ngerung|monthly|monatlich|yearly|j[aä]hrlich|annual|premium|prime)\b`)
	weekdaySuffixRE   = regexp.MustCompile(`(?i)` + weekdayPattern + `[\s,]*$`)
)

type naturalMatch struct {
	rule  *NaturalRule
	start int
	end   int
	cand  DateCandidate
	valid bool // kindDate matches only: numbers formed a real date
}

// recognizeNatural runs the broad whole-text recognizer. Newlines are
// flattened to spaces (byte offsets are preserved, so callers can map a
// match back to its source line). Returns surviving candidates sorted by
// priority, descending.
func recognizeNatural(text string, now time.Time, rules *Rules) []NaturalCandidate {
	flat := strings.NewReplacer("\n", " ", "\r", " ", "\t", " ").Replace(text)

	var matches []naturalMatch
	for i := range rules.Naturals {
		rule := &rules.Naturals[i]
		for _, loc := range rule.re.FindAllStringSubmatchIndex(flat, -1) {
			m := naturalMatch{rule: rule, start: loc[0], end: loc[1]}
			if rule.Kind == KindDate {
				cand, ok := naturalCandidateFromMatch(rule, flat, loc, now)
				if !ok {
					continue
				}
				m.cand = cand
				m.valid = true
			}
			matches = append(matches, m)
		}
	}

	var out []NaturalCandidate
	for _, m := range matches {
		switch m.rule.Kind {
		case KindVague:
			// Bare "today"/"tomorrow", a lone weekday, weekday+time: no
			// actionable date, rejected outright.
			continue
		case KindTimeOnly:
			// A bare time is noise once a real date exists anywhere in the
			// text; without one it cannot become an event either way.
			continue
		}
		if !m.valid {
			continue
		}

		nc := NaturalCandidate{
			DateCandidate: m.cand,
			Start:         m.start,
			End:           m.end,
			Window:        window(flat, m.start, m.end),
		}
		scoreNatural(&nc, flat)
		out = append(out, nc)
	}

	// Highest priority first; stable so equal scores keep text order.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	return out
}

// naturalCandidateFromMatch parses one natural-rule match into a
// DateCandidate. Month names resolve case-insensitively in English and
// German; a missing year defaults to the reference year, never the next
// one, even when the resulting date lies in the past.
func naturalCandidateFromMatch(rule *NaturalRule, flat string, loc []int, now time.Time) (DateCandidate, bool) {
	group := func(n int) string {
		if 2*n+1 >= len(loc) || loc[2*n] < 0 {
			return ""
		}
		return flat[loc[2*n]:loc[2*n+1]]
	}

	var day, month, year int
	switch rule.Layout {
	case NatDayMonthName:
		day, _ = strconv.Atoi(group(1))
		m, ok := monthFromName(group(2))
		if !ok {
			return DateCandidate{}, false
		}
		month = int(m)
		year = yearOrCurrent(group(3), now)
	case NatMonthNameDay:
		m, ok := monthFromName(group(1))
		if !ok {
			return DateCandidate{}, false
		}
		month = int(m)
		day, _ = strconv.Atoi(group(2))
		year = yearOrCurrent(group(3), now)
	case NatNumericDMY:
		day, _ = strconv.Atoi(group(1))
		month, _ = strconv.Atoi(group(2))
		year = expandYear(group(3))
	case NatNumericYMD:
		year = expandYear(group(1))
		month, _ = strconv.Atoi(group(2))
		day, _ = strconv.Atoi(group(3))
	default:
		return DateCandidate{}, false
	}

	if !validDate(year, month, day) {
		return DateCandidate{}, false
	}
	return DateCandidate{
		When: time.Date(year, time.Month(month), day, 0, 0, 0, 0, now.Location()),
		Span: flat[loc[0]:loc[1]],
	}, true
}

// monthFromName resolves a matched month-name token, trying the full
// lowercased name first and its three-letter stem second.
func monthFromName(name string) (time.Month, bool) {
	lower := strings.ToLower(strings.TrimSuffix(name, "."))
	if m, ok := monthsByName[lower]; ok {
		return m, true
	}
	runes := []rune(lower)
	if len(runes) >= 3 {
		if m, ok := monthsByName[string(runes[:3])]; ok {
			return m, true
		}
	}
	return 0, false
}

func yearOrCurrent(s string, now time.Time) int {
	if s == "" {
		return now.Year()
	}
	return expandYear(s)
}

func window(flat string, start, end int) string {
	lo := start - contextWindow
	if lo < 0 {
		lo = 0
	}
	hi := end + contextWindow
	if hi > len(flat) {
		hi = len(flat)
	}
	return flat[lo:hi]
}

// scoreNatural assigns the deadline flag and the priority score from the
// candidate's surroundings.
func scoreNatural(nc *NaturalCandidate, flat string) {
	if naturalDeadlineRE.MatchString(nc.Window) {
		nc.Deadline = true
		nc.Priority += prioDeadline
	}
	if startingOnRE.MatchString(nc.Window) {
		nc.Priority += prioStartingOn
	}
	if subscriptionRE.MatchString(nc.Window) {
		nc.Priority += prioSubscription
	}
	// A weekday name directly before the match deprioritizes it relative
	// to explicitly labelled subscription or due dates.
	if weekdaySuffixRE.MatchString(flat[:nc.Start]) {
		nc.Priority += prioWeekdayMatch
	}
}
