package event

import (
	"testing"
	"time"
)

func TestNewDefaults(t *testing.T) {
	created := time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)
	date := time.Date(2024, time.August, 14, 0, 0, 0, 0, time.UTC)

	ev := New("", date, nil, "", created)
	if ev.ID == "" {
		t.Error("New must assign an ID")
	}
	if ev.Name != DefaultName {
		t.Errorf("empty name = %q, want %q", ev.Name, DefaultName)
	}
	if !ev.Date.Equal(date) || !ev.CreatedAt.Equal(created) {
		t.Error("date or creation time not carried over")
	}
	if ev.Deadline != nil || ev.Done {
		t.Error("fresh event must have no deadline and not be done")
	}

	other := New("", date, nil, "", created)
	if other.ID == ev.ID {
		t.Error("each event must get its own ID")
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)
	b := time.Date(2024, time.December, 31, 23, 59, 0, 0, time.UTC)
	c := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	if !SameDay(a, b) {
		t.Error("same calendar day with different clock times must match")
	}
	if SameDay(a, c) {
		t.Error("adjacent days must not match")
	}
}

func TestOnDay(t *testing.T) {
	primary := time.Date(2024, time.December, 30, 9, 0, 0, 0, time.UTC)
	deadline := time.Date(2024, time.December, 31, 9, 0, 0, 0, time.UTC)
	ev := New("Rückgabe", primary, &deadline, "", time.Now())

	if !ev.OnDay(time.Date(2024, time.December, 30, 0, 0, 0, 0, time.UTC)) {
		t.Error("primary date day must match")
	}
	if !ev.OnDay(time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)) {
		t.Error("deadline day must match")
	}
	if ev.OnDay(time.Date(2024, time.December, 29, 0, 0, 0, 0, time.UTC)) {
		t.Error("unrelated day must not match")
	}
}
