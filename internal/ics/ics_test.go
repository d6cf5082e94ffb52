package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/deadjay/takt-sub000/internal/event"
)

func TestExportImportRoundTrip(t *testing.T) {
	created := time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)
	deadline := time.Date(2024, time.December, 31, 9, 0, 0, 0, time.UTC)

	a := event.New("Rückgabe", deadline.AddDate(0, 0, -1), &deadline, "Bon aufheben", created)
	b := event.New("Konzert", time.Date(2024, time.July, 20, 20, 0, 0, 0, time.UTC), nil, "", created)

	payload, err := Export([]*event.Event{&a, &b})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.Contains(payload, "BEGIN:VCALENDAR") || !strings.Contains(payload, "BEGIN:VEVENT") {
		t.Fatal("payload is not an iCalendar document")
	}
	if !strings.Contains(payload, "UID:"+a.ID) {
		t.Error("event ID must become the VEVENT UID")
	}
	if !strings.Contains(payload, deadlineProp) {
		t.Error("deadline must be carried in the X property")
	}

	got, err := Import(payload)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("imported %d events, want 2", len(got))
	}

	byID := map[string]*event.Event{}
	for _, ev := range got {
		byID[ev.ID] = ev
	}

	ra := byID[a.ID]
	if ra == nil {
		t.Fatal("first event missing after round trip")
	}
	if ra.Name != a.Name || ra.Notes != a.Notes {
		t.Errorf("round trip lost fields: %q/%q", ra.Name, ra.Notes)
	}
	if !event.SameDay(ra.Date, a.Date) {
		t.Errorf("date = %v, want the day of %v", ra.Date, a.Date)
	}
	if ra.Deadline == nil || !ra.Deadline.Equal(deadline) {
		t.Errorf("deadline = %v, want %v", ra.Deadline, deadline)
	}

	rb := byID[b.ID]
	if rb == nil {
		t.Fatal("second event missing after round trip")
	}
	if rb.Deadline != nil {
		t.Error("event without deadline must import without one")
	}
}

func TestExportRejectsMissingID(t *testing.T) {
	ev := &event.Event{Name: "kein ID", Date: time.Now()}
	if _, err := Export([]*event.Event{ev}); err == nil {
		t.Fatal("Export without id must fail")
	}
}

func TestImportDefaultsEmptySummary(t *testing.T) {
	created := time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)
	ev := event.New("platzhalter", time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC), nil, "", created)
	ev.Name = ""

	payload, err := Export([]*event.Event{&ev})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	got, err := Import(payload)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("imported %d events, want 1", len(got))
	}
	if got[0].Name != event.DefaultName {
		t.Errorf("name = %q, want %q", got[0].Name, event.DefaultName)
	}
}

func TestImportRejectsGarbage(t *testing.T) {
	if _, err := Import("not a calendar"); err == nil {
		t.Fatal("Import of non-iCalendar input must fail")
	}
}
