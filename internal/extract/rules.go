package extract

import (
	"regexp"
	"time"
)

// DateLayout describes how a DateRule's capture groups map onto a calendar
// date. Group order in the pattern must follow the layout.
type DateLayout int

const (
	LayoutDMY DateLayout = iota // groups: day, month, year (2 or 4 digits)
	LayoutMDY                   // groups: month, day, year
	LayoutYMD                   // groups: year, month, day
	LayoutDM                    // groups: day, month; year defaults to the reference year
)

// DateRule is one entry in the ordered pattern-stage rule table. Rules are
// evaluated top to bottom per line and the first rule producing a valid
// calendar date wins, so ordering encodes precedence: keyword-qualified
// forms sit above the generic numeric forms they would otherwise be
// shadowed by.
type DateRule struct {
	Name     string
	Pattern  string
	Layout   DateLayout
	Deadline bool // the rule itself marks the date as a due date

	re *regexp.Regexp
}

// TimeRule is one entry in the ordered time rule table. Groups: hour,
// optional minute, optional am/pm marker.
type TimeRule struct {
	Name    string
	Pattern string
	AMPM    bool // third group carries an a/p meridiem marker

	re *regexp.Regexp
}

// NaturalKind classifies a natural-stage match.
type NaturalKind int

const (
	// KindDate carries month+day information and can become an event.
	KindDate NaturalKind = iota
	// KindTimeOnly is a bare clock time; discarded once a genuine date
	// match exists anywhere in the text.
	KindTimeOnly
	// KindVague is a relative or underspecified expression (today,
	// tomorrow, a bare weekday) that carries no actionable date.
	KindVague
)

// NaturalLayout describes group order for natural-stage date rules.
type NaturalLayout int

const (
	NatDayMonthName NaturalLayout = iota // day, month name, optional year
	NatMonthNameDay                      // month name, day, optional year
	NatNumericDMY                        // day, month, year (2 or 4 digits)
	NatNumericYMD                        // year, month, day
	NatNone                              // time-only / vague rules, no groups used
)

// NaturalRule is one entry in the natural-language stage's pattern table.
// Unlike the pattern stage, every rule is applied over the whole flattened
// text and all matches are collected.
type NaturalRule struct {
	Name    string
	Pattern string
	Kind    NaturalKind
	Layout  NaturalLayout

	re *regexp.Regexp
}

// Rules bundles the ordered rule tables the pipeline runs on. The table is
// immutable after construction; tests substitute their own via WithRules.
type Rules struct {
	Dates    []DateRule
	Times    []TimeRule
	Naturals []NaturalRule
}

const (
	deadlineKeywords = `(?:bis(?:\s+zum)?|f[aä]llig(?:\s+am)?|zahlbar\s+bis|return\s+by|pay\s+until|due\s+(?:by|on))`
	expiryKeywords   = `(?:mhd|mindesthaltbarkeitsdatum|mindestens\s+haltbar\s+bis(?:\s+ende)?|zu\s+verbrauchen\s+bis|verbrauchen\s+bis|haltbar\s+bis|best\s+before(?:\s+end)?|use\s+by|bbe)`
	englishDueWords  = `(?:return\s+by|pay\s+until|due(?:\s+(?:by|on))?|expires?(?:\s+on)?)`

	monthNamePattern = `(jan(?:uar|uary)?|feb(?:ruar|ruary)?|m[aä]r(?:z|ch)?|apr(?:il)?|ma[iy]|jun[ie]?|jul[iy]?|aug(?:ust)?|sep(?:t(?:ember)?)?|o[ck]t(?:ober)?|nov(?:ember)?|de[cz](?:ember)?)`
	weekdayPattern   = `(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday|montag|dienstag|mittwoch|donnerstag|freitag|samstag|sonntag)`
)

// DefaultRules returns the built-in rule tables. Patterns are compiled with
// MustCompile: a pattern that fails to compile is a programming defect and
// is caught by TestDefaultRulesCompile, not handled at runtime.
func DefaultRules() *Rules {
	r := &Rules{
		Dates: []DateRule{
			// 1. Keyword-qualified deadline with explicit 4-digit year.
			{Name: "deadline_keyword_dmy4", Layout: LayoutDMY, Deadline: true,
				Pattern: `(?i)` + deadlineKeywords + `\s*:?\s*(\d{1,2})\.(\d{1,2})\.(\d{4})`},
			// 2. Best-before / use-by forms, 2- or 4-digit year. Evaluated
			// before the generic numeric patterns so the label context is
			// not lost to them.
			{Name: "expiry_keyword_dmy", Layout: LayoutDMY, Deadline: true,
				Pattern: `(?i)` + expiryKeywords + `\s*:?\s*(\d{1,2})\.(\d{1,2})\.(\d{4}|\d{2})\b`},
			{Name: "expiry_keyword_dm", Layout: LayoutDM, Deadline: true,
				Pattern: `(?i)` + expiryKeywords + `\s*:?\s*(\d{1,2})\.(\d{1,2})\.?`},
			// 3. Keyword-qualified deadline without year.
			{Name: "deadline_keyword_dm", Layout: LayoutDM, Deadline: true,
				Pattern: `(?i)` + deadlineKeywords + `\s*:?\s*(\d{1,2})\.(\d{1,2})\.?`},
			// 4. Standard numeric formats with explicit year. Slash forms
			// are disambiguated by year digit count: 4 digits is US
			// month/day/year, 2 digits is European day/month/year.
			{Name: "numeric_dmy4", Layout: LayoutDMY,
				Pattern: `\b(\d{1,2})\.(\d{1,2})\.(\d{4})\b`},
			{Name: "numeric_dmy2", Layout: LayoutDMY,
				Pattern: `\b(\d{1,2})\.(\d{1,2})\.(\d{2})\b`},
			{Name: "numeric_mdy4_slash", Layout: LayoutMDY,
				Pattern: `\b(\d{1,2})/(\d{1,2})/(\d{4})\b`},
			{Name: "numeric_dmy2_slash", Layout: LayoutDMY,
				Pattern: `\b(\d{1,2})/(\d{1,2})/(\d{2})\b`},
			{Name: "numeric_iso", Layout: LayoutYMD,
				Pattern: `\b(\d{4})-(\d{1,2})-(\d{1,2})\b`},
			// 5. English keyword deadline without year.
			{Name: "deadline_english_dm", Layout: LayoutDM, Deadline: true,
				Pattern: `(?i)` + englishDueWords + `\s*:?\s*(\d{1,2})\.(\d{1,2})\.?`},
			// 6. Bare day.month without year. Matches broadly and must stay
			// last so it cannot shadow the rules above it.
			{Name: "numeric_dm", Layout: LayoutDM,
				Pattern: `\b(\d{1,2})\.(\d{1,2})\.?`},
		},
		Times: []TimeRule{
			{Name: "uhr_hm", Pattern: `(?i)\b(\d{1,2})[:.](\d{2})\s*uhr\b`},
			{Name: "uhr_h", Pattern: `(?i)\b(\d{1,2})\s*uhr\b`},
			{Name: "ampm", AMPM: true, Pattern: `(?i)\b(\d{1,2})(?::(\d{2}))?\s*([ap])\.?m\.?\b`},
			{Name: "hm24", Pattern: `\b(\d{1,2}):(\d{2})\b`},
		},
		Naturals: []NaturalRule{
			{Name: "nat_day_monthname", Kind: KindDate, Layout: NatDayMonthName,
				Pattern: `(?i)\b(\d{1,2})(?:st|nd|rd|th)?\b\.?\s+` + monthNamePattern + `\b\.?(?:\s*,?\s+(\d{4})\b)?`},
			{Name: "nat_monthname_day", Kind: KindDate, Layout: NatMonthNameDay,
				Pattern: `(?i)\b` + monthNamePattern + `\b\.?\s+(\d{1,2})(?:st|nd|rd|th)?\b(?:\s*,?\s+(\d{4})\b)?`},
			{Name: "nat_numeric_dmy", Kind: KindDate, Layout: NatNumericDMY,
				Pattern: `\b(\d{1,2})\.(\d{1,2})\.(\d{4}|\d{2})\b`},
			{Name: "nat_numeric_iso", Kind: KindDate, Layout: NatNumericYMD,
				Pattern: `\b(\d{4})-(\d{1,2})-(\d{1,2})\b`},
			{Name: "nat_time_only", Kind: KindTimeOnly, Layout: NatNone,
				Pattern: `(?i)\b\d{1,2}(?::\d{2})?\s*(?:uhr|am|pm)\b|\b\d{1,2}:\d{2}\b`},
			{Name: "nat_vague_relative", Kind: KindVague, Layout: NatNone,
				Pattern: `(?i)\b(?:today|tomorrow|tonight|heute|morgen|[uü]bermorgen)\b`},
			{Name: "nat_vague_weekday", Kind: KindVague, Layout: NatNone,
				Pattern: `(?i)\b` + weekdayPattern + `\b(?:\s+\d{1,2}:\d{2})?`},
		},
	}

	for i := range r.Dates {
		r.Dates[i].re = regexp.MustCompile(r.Dates[i].Pattern)
	}
	for i := range r.Times {
		r.Times[i].re = regexp.MustCompile(r.Times[i].Pattern)
	}
	for i := range r.Naturals {
		r.Naturals[i].re = regexp.MustCompile(r.Naturals[i].Pattern)
	}
	return r
}

// monthsByName resolves English and German month names, including the usual
// three-letter abbreviations, after lowercasing.
var monthsByName = map[string]time.Month{
	"jan": time.January, "januar": time.January, "january": time.January,
	"feb": time.February, "februar": time.February, "february": time.February,
	"mar": time.March, "mär": time.March, "march": time.March, "märz": time.March, "marz": time.March,
	"apr": time.April, "april": time.April,
	"mai": time.May, "may": time.May,
	"jun": time.June, "juni": time.June, "june": time.June,
	"jul": time.July, "juli": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"okt": time.October, "oct": time.October, "oktober": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dez": time.December, "dec": time.December, "dezember": time.December, "december": time.December,
}
