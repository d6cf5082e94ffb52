// Package ics converts takt events to and from iCalendar payloads so they
// can move into regular calendar applications.
package ics

import (
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/deadjay/takt-sub000/internal/event"
)

// deadlineProp carries the due date through a round-trip; VEVENT has no
// native DUE property (that belongs to VTODO).
const deadlineProp = "X-TAKT-DEADLINE"

// Export serializes events into a single VCALENDAR. The event ID becomes
// the VEVENT UID, so repeated exports stay stable for syncing consumers.
func Export(events []*event.Event) (string, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//takt//event extraction//EN")

	for _, ev := range events {
		if ev.ID == "" {
			return "", fmt.Errorf("event %q has no id", ev.Name)
		}
		ve := cal.AddEvent(ev.ID)
		ve.SetSummary(ev.Name)
		ve.SetStartAt(ev.Date)
		ve.SetEndAt(ev.Date.Add(time.Hour))
		ve.SetDtStampTime(ev.CreatedAt)
		ve.SetCreatedTime(ev.CreatedAt)
		if ev.Notes != "" {
			ve.SetDescription(ev.Notes)
		}
		if ev.Deadline != nil {
			ve.SetProperty(ical.ComponentProperty(deadlineProp), ev.Deadline.Format(time.RFC3339))
		}
	}

	return cal.Serialize(), nil
}

// Import parses a VCALENDAR payload back into events. Events without a
// parsable DTSTART are skipped rather than failing the whole import.
func Import(data string) ([]*event.Event, error) {
	cal, err := ical.ParseCalendar(strings.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing calendar: %w", err)
	}

	var out []*event.Event
	for _, ve := range cal.Events() {
		uid := propValue(ve, ical.ComponentPropertyUniqueId)
		if uid == "" {
			continue
		}
		start, err := ve.GetStartAt()
		if err != nil {
			continue
		}

		ev := &event.Event{
			ID:        uid,
			Name:      propValue(ve, ical.ComponentPropertySummary),
			Date:      start,
			Notes:     propValue(ve, ical.ComponentPropertyDescription),
			CreatedAt: time.Now(),
		}
		if ev.Name == "" {
			ev.Name = event.DefaultName
		}
		if raw := propValue(ve, ical.ComponentProperty(deadlineProp)); raw != "" {
			if t, err := time.Parse(time.RFC3339, raw); err == nil {
				ev.Deadline = &t
			}
		}
		out = append(out, ev)
	}
	return out, nil
}

func propValue(ve *ical.VEvent, name ical.ComponentProperty) string {
	p := ve.GetProperty(name)
	if p == nil {
		return ""
	}
	return p.Value
}
