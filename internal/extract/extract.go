// Package extract turns unstructured, OCR-derived or pasted free text into
// candidate calendar events, fully offline.
//
// The pipeline runs two detection stages over the input:
//   - a deterministic pattern stage: ordered date/time rule tables applied
//     line by line, first-match-wins (receipts, food labels, tickets);
//   - a natural-language stage: a broader recognizer over the whole text
//     with contextual priority scoring (announcements, subscription mails).
//
// A resolver merges the two candidate streams by calendar day so the same
// date never produces two events. Extraction fails open: text without a
// recognizable date yields an empty list, which is a normal result, not an
// error.
package extract

import (
	"strings"
	"time"

	"github.com/deadjay/takt-sub000/internal/event"
)

// DefaultFallbackHour is the clock time assigned to natural-stage events
// whose context carries no time of day. The pattern stage defaults to
// midnight instead; the asymmetry is observed, deliberate behavior.
const DefaultFallbackHour = 9

// Pipeline is the extraction engine. It holds only immutable rule tables,
// performs no I/O and keeps no state between calls, so a single Pipeline is
// safe for any number of concurrent callers.
type Pipeline struct {
	rules        *Rules
	fallbackHour int
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithRules substitutes the built-in rule tables. Rules passed here must
// already be compiled (DefaultRules-shaped); tests use this to pin down
// precedence behavior with reduced tables.
func WithRules(r *Rules) PipelineOption {
	return func(p *Pipeline) { p.rules = r }
}

// WithFallbackHour overrides the natural-stage fallback clock time.
func WithFallbackHour(hour int) PipelineOption {
	return func(p *Pipeline) { p.fallbackHour = hour }
}

// NewPipeline creates an extraction pipeline with the built-in rule tables.
func NewPipeline(opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		rules:        DefaultRules(),
		fallbackHour: DefaultFallbackHour,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Extract runs both stages over text and returns the combined, deduplicated
// event list. now supplies the year for yearless dates and the creation
// timestamp; fixing it makes extraction fully reproducible.
func (p *Pipeline) Extract(text string, now time.Time) []event.Event {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")

	var events []event.Event
	seen := make(map[dayKey]bool)

	for i, line := range lines {
		dc, ok := matchDate(line, now, p.rules.Dates)
		if !ok {
			continue
		}
		// A date not flagged by its own rule may still be a deadline when
		// the label sits on a line above it ("Use by:" over the date).
		if !dc.Deadline && hasDeadlineContext(lines, i) {
			dc.Deadline = true
		}
		// In-stage dedup by calendar day: the first line wins.
		if seen[keyOf(dc.When)] {
			continue
		}
		seen[keyOf(dc.When)] = true

		when := dc.When
		var timeSpan string
		if tc, ok := matchTime(line, p.rules.Times); ok {
			when = mergeTime(when, tc)
			timeSpan = tc.Span
		}

		name := deriveName(lines, i, dc.Span, timeSpan, now, p.rules)
		notes := deriveNotes(lines, i, now, p.rules)

		primary := when
		var deadline *time.Time
		if dc.Deadline {
			d := when
			deadline = &d
			// The reminder lands one day ahead of the due date.
			primary = when.AddDate(0, 0, -1)
		}

		events = append(events, event.New(name, primary, deadline, notes, now))
	}

	// The natural stage always runs and reads the pattern-stage output: its
	// dedup logic depends on the full list being available.
	cands := recognizeNatural(text, now, p.rules)
	events = p.resolveNatural(cands, events, text, now)

	return events
}
