package extract

import (
	"testing"
	"time"
)

func TestMatchTimeFormats(t *testing.T) {
	rules := DefaultRules().Times
	cases := []struct {
		line   string
		hour   int
		minute int
	}{
		{"Treffen um 14:30 Uhr", 14, 30},
		{"Treffen um 14.30 Uhr", 14, 30},
		{"Party ab 20 Uhr", 20, 0},
		{"dinner at 7 pm", 19, 0},
		{"dinner at 7:15 PM", 19, 15},
		{"call at 9 a.m.", 9, 0},
		{"call at 12 am", 0, 0},
		{"lunch at 12 pm", 12, 0},
		{"open until 18:45", 18, 45},
	}
	for _, tc := range cases {
		got, ok := matchTime(tc.line, rules)
		if !ok {
			t.Errorf("matchTime(%q): no match", tc.line)
			continue
		}
		if got.Hour != tc.hour || got.Minute != tc.minute {
			t.Errorf("matchTime(%q) = %d:%02d, want %d:%02d", tc.line, got.Hour, got.Minute, tc.hour, tc.minute)
		}
	}
}

func TestMatchTimeRejects(t *testing.T) {
	rules := DefaultRules().Times
	for _, line := range []string{
		"",
		"keine Uhrzeit",
		"25:00 ist keine Zeit",
		"12:75 auch nicht",
		"13 pm",
	} {
		if got, ok := matchTime(line, rules); ok {
			t.Errorf("matchTime(%q) = %d:%02d, want no match", line, got.Hour, got.Minute)
		}
	}
}

func TestMergeTimeKeepsDay(t *testing.T) {
	d := day(2024, time.December, 31, 0, 0)
	got := mergeTime(d, TimeCandidate{Hour: 20, Minute: 15})
	want := day(2024, time.December, 31, 20, 15)
	if !got.Equal(want) {
		t.Errorf("mergeTime = %v, want %v", got, want)
	}
}
