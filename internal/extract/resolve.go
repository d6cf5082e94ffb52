package extract

import (
	"strings"
	"time"

	"github.com/deadjay/takt-sub000/internal/event"
)

// dayKey identifies a calendar day for deduplication.
type dayKey struct {
	y int
	m time.Month
	d int
}

func keyOf(t time.Time) dayKey {
	y, m, d := t.Date()
	return dayKey{y, m, d}
}

// resolveNatural merges natural-stage candidates into the pattern-stage
// event list. Candidates arrive sorted by priority; for each one, in order:
//
//   - same calendar day as any accepted event's primary date or deadline →
//     dropped, the pattern stage is authoritative;
//   - same day already claimed by a higher-priority candidate this stage →
//     dropped;
//   - otherwise accepted: clock time comes from the candidate's context
//     window, falling back to 09:00 (deliberately distinct from the
//     pattern stage's implicit midnight), and the name from nearby valid
//     lines ranked by pure proximity to the match.
//
// Pattern-stage events are never edited or removed here.
func (p *Pipeline) resolveNatural(cands []NaturalCandidate, events []event.Event, text string, now time.Time) []event.Event {
	claimed := make(map[dayKey]bool)
	lines := strings.Split(text, "\n")

	for _, nc := range cands {
		day := nc.When
		if coveredByEvents(events, day) {
			continue
		}
		if claimed[keyOf(day)] {
			continue
		}
		claimed[keyOf(day)] = true

		when := nc.When
		if tc, ok := matchTime(nc.Window, p.rules.Times); ok {
			when = mergeTime(when, tc)
		} else {
			when = time.Date(when.Year(), when.Month(), when.Day(), p.fallbackHour, 0, 0, 0, when.Location())
		}

		name := p.naturalName(lines, nc, now)

		primary := when
		var deadline *time.Time
		if nc.Deadline {
			d := when
			deadline = &d
			primary = when.AddDate(0, 0, -1)
		}

		events = append(events, event.New(name, primary, deadline, "", now))
	}
	return events
}

func coveredByEvents(events []event.Event, day time.Time) bool {
	for i := range events {
		if events[i].OnDay(day) {
			return true
		}
	}
	return false
}

// naturalName derives a name for a stage-two candidate from up to 3 valid
// lines ranked by distance to the line holding the match. Unlike the
// pattern stage there is no before/after preference: stage-two matches come
// from flowing prose where the label can sit on either side.
func (p *Pipeline) naturalName(lines []string, nc NaturalCandidate, now time.Time) string {
	idx := lineIndexOf(lines, nc.Start)

	var parts []string
	base := strings.Replace(lines[idx], nc.Span, " ", 1)
	if tc, ok := matchTime(base, p.rules.Times); ok {
		base = strings.Replace(base, tc.Span, " ", 1)
	}
	stripped := cleanNameFragment(base)
	if len(stripped) >= 3 && isValidNameLine(stripped, now, p.rules) {
		parts = append(parts, stripped)
	}
	for _, off := range []int{-1, 1, -2, 2, -3, 3} {
		if len(parts) == 3 {
			break
		}
		i := idx + off
		if i < 0 || i >= len(lines) || !isValidNameLine(lines[i], now, p.rules) {
			continue
		}
		parts = append(parts, strings.TrimSpace(lines[i]))
	}
	return cleanNameFragment(strings.Join(parts, " "))
}

// lineIndexOf maps a byte offset in the flattened text back to its source
// line. Flattening replaces each newline with a single space, so offsets
// in the original text are identical.
func lineIndexOf(lines []string, offset int) int {
	pos := 0
	for i, line := range lines {
		pos += len(line) + 1 // the replaced newline
		if offset < pos {
			return i
		}
	}
	return len(lines) - 1
}
