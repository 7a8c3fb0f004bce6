package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gdinexus/gfit-workout-service/internal/memberapi"
)

// aliases on a schedule tag that mean "every day of the week"
var everydayAliases = map[string]bool{
	"all day":   true,
	"allday":    true,
	"everyday":  true,
	"every day": true,
	"daily":     true,
	"any":       true,
	"all":       true,
}

// IsScheduledOn reports whether the exercise is due on the given calendar day.
// Exercises without any schedule tags show up every day. Unknown or blank tag
// values count as non-matching. The weekday comparison uses the local
// calendar day of the given time.
func IsScheduledOn(ex memberapi.Exercise, date time.Time) bool {
	if len(ex.ScheduleTypes) == 0 {
		return true
	}

	names := make([]string, 0, len(ex.ScheduleTypes))
	for _, st := range ex.ScheduleTypes {
		names = append(names, strings.ToLower(strings.TrimSpace(st.Name)))
	}

	for _, name := range names {
		if everydayAliases[name] {
			return true
		}
	}

	weekday := strings.ToLower(date.Weekday().String())
	for _, name := range names {
		if name == weekday {
			return true
		}
	}
	return false
}

// DateKey formats the local calendar date as YYYY-MM-DD. Local components
// on purpose: a workout must not slip off "today" near midnight because of
// the UTC offset.
func DateKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
}

const defaultDurationSec = 20 * 60

var (
	hoursRegex   = regexp.MustCompile(`(\d+)\s*(h|hr|hrs|hour|hours)`)
	minutesRegex = regexp.MustCompile(`(\d+)\s*(m|min|mins|minute|minutes)`)
)

// ParseDurationToSeconds extracts hour/minute components from free-form
// duration text ("20 min", "1h 30m", "45"). A bare number means minutes.
// Unparsable input resolves to the 20 minute default, never zero or negative.
func ParseDurationToSeconds(text string) int {
	s := strings.ToLower(text)

	hours := 0
	if m := hoursRegex.FindStringSubmatch(s); m != nil {
		hours, _ = strconv.Atoi(m[1])
	}

	minutes := 0
	if m := minutesRegex.FindStringSubmatch(s); m != nil {
		minutes, _ = strconv.Atoi(m[1])
	} else if hours == 0 {
		minutes, _ = strconv.Atoi(strings.TrimSpace(s))
	}

	total := hours*3600 + minutes*60
	if total <= 0 {
		return defaultDurationSec
	}
	return total
}

// FormatMMSS formats total seconds as zero-padded "MM:SS".
func FormatMMSS(totalSec int) string {
	if totalSec < 0 {
		totalSec = 0
	}
	m := totalSec / 60
	s := totalSec % 60
	return fmt.Sprintf("%02d:%02d", m, s)
}

// FormatHMS formats total seconds as "MM:SS", with a leading "HH:" part
// only when there is a full hour.
func FormatHMS(totalSec int) string {
	if totalSec < 0 {
		totalSec = 0
	}
	h := totalSec / 3600
	m := (totalSec % 3600) / 60
	s := totalSec % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// FormatWords spells out the remaining time, e.g. "1 hour 5 minutes remaining".
func FormatWords(totalSec int) string {
	if totalSec < 0 {
		totalSec = 0
	}
	h := totalSec / 3600
	m := (totalSec % 3600) / 60
	s := totalSec % 60

	var parts []string
	if h > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", h, plural("hour", h)))
	}
	if m > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", m, plural("minute", m)))
	}
	if s > 0 || (h == 0 && m == 0) {
		parts = append(parts, fmt.Sprintf("%d %s", s, plural("second", s)))
	}
	return strings.Join(parts, " ") + " remaining"
}

func plural(unit string, n int) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}
