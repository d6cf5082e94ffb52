// Package event defines the calendar event value type produced by the
// extraction pipeline and consumed by the store, exporter and CLI.
package event

import (
	"time"

	"github.com/google/uuid"
)

// DefaultName labels events whose source text yielded no usable name.
const DefaultName = "Untitled event"

// Event is a single extracted (or manually entered) calendar event.
//
// Date is the primary/reminder date. For due-date style events (payments,
// expiry, returns) Deadline holds the actual due date and Date is set one
// day earlier by the pipeline. Events are never mutated by the extraction
// core after construction.
type Event struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Date      time.Time  `json:"date"`
	Deadline  *time.Time `json:"deadline,omitempty"`
	Notes     string     `json:"notes,omitempty"`
	Done      bool       `json:"done"`
	CreatedAt time.Time  `json:"created_at"`
	Image     []byte     `json:"image,omitempty"`
}

// New constructs an Event with a fresh identity. An empty name falls back
// to DefaultName so the invariant "name is never empty" holds at the source.
func New(name string, date time.Time, deadline *time.Time, notes string, createdAt time.Time) Event {
	if name == "" {
		name = DefaultName
	}
	return Event{
		ID:        uuid.NewString(),
		Name:      name,
		Date:      date,
		Deadline:  deadline,
		Notes:     notes,
		CreatedAt: createdAt,
	}
}

// SameDay reports whether a and b fall on the same calendar day,
// ignoring time of day. All deduplication in the pipeline compares
// days, not timestamps, because OCR and timezone noise make exact
// timestamp equality unreliable.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// OnDay reports whether the event's primary date or its deadline falls on
// the same calendar day as t.
func (e Event) OnDay(t time.Time) bool {
	if SameDay(e.Date, t) {
		return true
	}
	return e.Deadline != nil && SameDay(*e.Deadline, t)
}
