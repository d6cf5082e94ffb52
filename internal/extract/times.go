package extract

import (
	"strconv"
	"strings"
	"time"
)

// TimeCandidate is a recognized clock time with its matched text span.
type TimeCandidate struct {
	Hour   int
	Minute int
	Span   string
}

// matchTime applies the ordered time rules to a line and returns the first
// valid match. Like the date rules, first-match-wins.
func matchTime(line string, rules []TimeRule) (TimeCandidate, bool) {
	for i := range rules {
		rule := &rules[i]
		for _, loc := range rule.re.FindAllStringSubmatchIndex(line, -1) {
			group := func(n int) string {
				if 2*n+1 >= len(loc) || loc[2*n] < 0 {
					return ""
				}
				return line[loc[2*n]:loc[2*n+1]]
			}

			hour, _ := strconv.Atoi(group(1))
			minute := 0
			if m := group(2); m != "" {
				minute, _ = strconv.Atoi(m)
			}

			if rule.AMPM {
				if hour < 1 || hour > 12 {
					continue
				}
				meridiem := strings.ToLower(group(3))
				if hour == 12 {
					hour = 0
				}
				if meridiem == "p" {
					hour += 12
				}
			}

			if hour > 23 || minute > 59 {
				continue
			}

			return TimeCandidate{
				Hour:   hour,
				Minute: minute,
				Span:   line[loc[0]:loc[1]],
			}, true
		}
	}
	return TimeCandidate{}, false
}

// mergeTime replaces the hour/minute/second of d with the recognized time,
// leaving the calendar day untouched.
func mergeTime(d time.Time, tc TimeCandidate) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), tc.Hour, tc.Minute, 0, 0, d.Location())
}
