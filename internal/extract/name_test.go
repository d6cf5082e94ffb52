package extract

import "testing"

func TestIsValidNameLine(t *testing.T) {
	rules := DefaultRules()
	cases := []struct {
		line string
		want bool
	}{
		{"Zahnarzt Termin", true},
		{"REWE Markt", true},
		{"ab", false},
		{"  ", false},
		{"14.08.2024", false},
		{"um 14:30", false},
		{"3,99 €", false},
		{"500 g Mehl", false},
		{"AB12345/X", false},
		{"Charge: L2204", false},
		{"Art.Nr 44821", false},
		{"www.example.com", false},
		{"MwSt 19%", false},
	}
	for _, tc := range cases {
		if got := isValidNameLine(tc.line, ref, rules); got != tc.want {
			t.Errorf("isValidNameLine(%q) = %v, want %v", tc.line, got, tc.want)
		}
	}
}

func TestCleanNameFragment(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  zahnarzt   termin  ", "Zahnarzt termin"},
		{"*** Konzert ***", "Konzert"},
		{"- milch kaufen -", "Milch kaufen"},
		{"", ""},
		{" .,- ", ""},
	}
	for _, tc := range cases {
		if got := cleanNameFragment(tc.in); got != tc.want {
			t.Errorf("cleanNameFragment(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDeriveNameFromDateLine(t *testing.T) {
	rules := DefaultRules()
	lines := []string{"Zahnarzt Termin 14.08.2024"}
	got := deriveName(lines, 0, "14.08.2024", "", ref, rules)
	if got != "Zahnarzt Termin" {
		t.Errorf("deriveName = %q, want %q", got, "Zahnarzt Termin")
	}
}

func TestDeriveNameStripsTimeSpan(t *testing.T) {
	rules := DefaultRules()
	lines := []string{"Party 31.12.2024 20 Uhr"}
	got := deriveName(lines, 0, "31.12.2024", "20 Uhr", ref, rules)
	if got != "Party" {
		t.Errorf("deriveName = %q, want %q", got, "Party")
	}
}

func TestDeriveNamePrefixesContextLine(t *testing.T) {
	rules := DefaultRules()
	lines := []string{"Stadthalle", "Konzert 20.07.2024"}
	got := deriveName(lines, 1, "20.07.2024", "", ref, rules)
	if got != "Stadthalle Konzert" {
		t.Errorf("deriveName = %q, want %q", got, "Stadthalle Konzert")
	}
}

func TestDeriveNameJoinsNearbyLines(t *testing.T) {
	rules := DefaultRules()
	// The date line itself carries no usable text; the valid neighbors are
	// joined, lines above first, noise lines skipped.
	lines := []string{"REWE Markt", "3,99 €", "12.08.2024", "Bio Joghurt"}
	got := deriveName(lines, 2, "12.08.2024", "", ref, rules)
	if got != "REWE Markt Bio Joghurt" {
		t.Errorf("deriveName = %q, want %q", got, "REWE Markt Bio Joghurt")
	}
}

func TestDeriveNameEmptyWhenNothingUsable(t *testing.T) {
	rules := DefaultRules()
	lines := []string{"31.12.2024"}
	if got := deriveName(lines, 0, "31.12.2024", "", ref, rules); got != "" {
		t.Errorf("deriveName = %q, want empty", got)
	}
}

func TestDeriveNotes(t *testing.T) {
	rules := DefaultRules()
	lines := []string{"Hinweis oben", "Termin 14.08.2024", "Hinweis unten"}
	got := deriveNotes(lines, 1, ref, rules)
	want := "Hinweis oben\nHinweis unten"
	if got != want {
		t.Errorf("deriveNotes = %q, want %q", got, want)
	}
}

func TestDeriveNotesSkipsDateLines(t *testing.T) {
	rules := DefaultRules()
	lines := []string{"anderes Datum 01.01.2024", "Termin 14.08.2024", ""}
	if got := deriveNotes(lines, 1, ref, rules); got != "" {
		t.Errorf("deriveNotes = %q, want empty", got)
	}
}
