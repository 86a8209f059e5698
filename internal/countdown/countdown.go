// Package countdown computes whole days left until a calendar deadline and
// formats the banner texts that show them.
package countdown

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	// DateLayout is the format of deadlines in job files.
	DateLayout = "2006-01-02"
	// GeneratedLayout is the format of the "Generated:" label.
	GeneratedLayout = "2006-01-02 15:04:05"

	daysPlaceholder = "{days}"
	day             = 24 * time.Hour
)

// Target is a fixed calendar deadline. Only the date part is meaningful.
type Target struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseTarget parses a deadline in YYYY-MM-DD form.
func ParseTarget(s string) (Target, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Target{}, fmt.Errorf("invalid deadline %q: %w", s, err)
	}
	return Target{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

func (t Target) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year, t.Month, t.Day)
}

// DaysRemaining returns the whole days between now and midnight of the deadline.
// Both instants are compared as wall-clock readings, so zone offsets and DST
// transitions never shift the count. The result is floored: a deadline that
// passed an hour ago yields -1.
func (t Target) DaysRemaining(now time.Time) int {
	deadline := time.Date(t.Year, t.Month, t.Day, 0, 0, 0, 0, time.UTC)
	d := deadline.Sub(wallClock(now))

	days := int(d / day)
	if d%day < 0 {
		days--
	}
	return days
}

// DaysRemainingAfter is DaysRemaining evaluated offset seconds after now.
func (t Target) DaysRemainingAfter(now time.Time, offset time.Duration) int {
	return t.DaysRemaining(now.Add(offset))
}

func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// Format substitutes the day count into a message template containing {days}.
func Format(template string, days int) string {
	return strings.ReplaceAll(template, daysPlaceholder, strconv.Itoa(days))
}

// GeneratedLabel renders the timestamp label placed on static outputs.
func GeneratedLabel(now time.Time) string {
	return "Generated: " + now.Format(GeneratedLayout)
}

// Clock returns c, or the real clock when c is nil.
func Clock(c clockwork.Clock) clockwork.Clock {
	if c == nil {
		return clockwork.NewRealClock()
	}
	return c
}
