/*
Package calendar provides the day-granular date arithmetic used by settlement.

PURPOSE:
  Every settlement rule is expressed in whole calendar days: inclusive day
  counts, month starts, month ends and anniversary steps. Date wraps time.Time
  at UTC midnight so that comparisons never trip over clocks or zones.

KEY CONCEPTS IN THIS FILE (date.go):
  - Date: a calendar day (UTC midnight), zero value means "not set"
  - InclusiveDays: day span counting both endpoints
  - IsLastDayOfMonth / StartOfMonth / EndOfMonth
  - AddYearsClamped / AddMonthsClamped: anniversary steps that never overflow
    into the next month (Feb 29 + 1 year = Feb 28)

CONVENTIONS:
  Missing dates are represented by the zero Date. Helpers that receive a zero
  Date treat it as absent rather than as year 1.

SEE ALSO:
  - period.go: inclusive [Start, End] windows
  - settlement/service.go: tenure walk built on the clamped steps
*/
package calendar

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format for dates (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// =============================================================================
// DATE - Calendar day
// =============================================================================

type Date struct {
	Time time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// FromTime truncates t to its calendar day, keeping the wall-clock date.
func FromTime(t time.Time) Date {
	if t.IsZero() {
		return Date{}
	}
	return NewDate(t.Year(), t.Month(), t.Day())
}

func Today() Date {
	return FromTime(time.Now())
}

// ParseDate accepts YYYY-MM-DD or RFC3339. An empty string yields the zero Date.
func ParseDate(value string) (Date, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Date{}, nil
	}
	if t, err := time.Parse(DateLayout, value); err == nil {
		return FromTime(t), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", value)
	}
	return FromTime(t), nil
}

// MustParseDate is for fixtures and tests.
func MustParseDate(value string) Date {
	d, err := ParseDate(value)
	if err != nil {
		panic(err)
	}
	return d
}

// Comparison
func (d Date) Before(other Date) bool        { return d.Time.Before(other.Time) }
func (d Date) After(other Date) bool         { return d.Time.After(other.Time) }
func (d Date) Equal(other Date) bool         { return d.Time.Equal(other.Time) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{Time: d.Time.AddDate(0, 0, n)} }

// Properties
func (d Date) Year() int          { return d.Time.Year() }
func (d Date) Month() time.Month  { return d.Time.Month() }
func (d Date) Day() int           { return d.Time.Day() }
func (d Date) IsZero() bool       { return d.Time.IsZero() }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time.Format(DateLayout)
}

// =============================================================================
// DAY COUNTS AND MONTH BOUNDARIES
// =============================================================================

// InclusiveDays counts the days in [from, to] including both ends.
// It returns 0 when either date is missing or to is before from.
func InclusiveDays(from, to Date) int {
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return 0
	}
	return DaysBetween(from, to) + 1
}

// DaysBetween is the signed number of calendar days from from to to.
func DaysBetween(from, to Date) int {
	return int(to.Time.Sub(from.Time).Hours() / 24)
}

// IsLastDayOfMonth reports whether the next day falls in another month.
func IsLastDayOfMonth(d Date) bool {
	return d.AddDays(1).Month() != d.Month()
}

func StartOfMonth(d Date) Date {
	return NewDate(d.Year(), d.Month(), 1)
}

func EndOfMonth(year int, month time.Month) Date {
	return NewDate(year, month, DaysInMonth(year, month))
}

func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// =============================================================================
// CLAMPED STEPS - Anniversary arithmetic
// =============================================================================

// AddYearsClamped moves d by n years keeping month and day, clamping the day
// to the last day of the target month (Feb 29 -> Feb 28 in common years).
func AddYearsClamped(d Date, n int) Date {
	return clampedDate(d.Year()+n, d.Month(), d.Day())
}

// AddMonthsClamped moves d by n months keeping the day of month, clamping to
// the target month's last day (Jan 31 + 1 month -> Feb 28/29).
func AddMonthsClamped(d Date, n int) Date {
	total := int(d.Month()) - 1 + n
	year := d.Year() + floorDiv(total, 12)
	month := time.Month(total - floorDiv(total, 12)*12 + 1)
	return clampedDate(year, month, d.Day())
}

func clampedDate(year int, month time.Month, day int) Date {
	if last := DaysInMonth(year, month); day > last {
		day = last
	}
	return NewDate(year, month, day)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Min returns the earlier of two dates.
func Min(a, b Date) Date {
	if b.Before(a) {
		return b
	}
	return a
}

// Max returns the latest of the given dates, ignoring zero dates.
func Max(dates ...Date) Date {
	var latest Date
	for _, d := range dates {
		if d.IsZero() {
			continue
		}
		if latest.IsZero() || d.After(latest) {
			latest = d
		}
	}
	return latest
}
