// Package cycle implements the accounting-period calendar used across the
// forecast engine. Periods do not align with calendar months: the period
// labeled "2026-02" normally starts on January 25th (December periods start
// on the 19th, a payroll exception), shifted off weekends, and any period
// can be overridden with an explicit date range.
package cycle

import (
	"fmt"
	"time"

	"fluxo/internal/models"
)

// DateOnly truncates a timestamp to midnight UTC. All period math operates
// on day granularity.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// AddMonthsClamped adds n months to a date, clamping the day-of-month to the
// last valid day of the target month (Jan 31 + 1 month = Feb 28/29).
// time.AddDate would normalize Feb 31 into March, which is wrong for
// day-of-month anchored recurring charges.
func AddMonthsClamped(t time.Time, n int) time.Time {
	t = DateOnly(t)
	year, month, day := t.Date()

	total := int(month) - 1 + n
	targetYear := year + floorDiv(total, 12)
	targetMonth := time.Month(mod(total, 12) + 1)

	last := lastDayOfMonth(targetYear, targetMonth)
	if day > last {
		day = last
	}
	return time.Date(targetYear, targetMonth, day, 0, 0, 0, 0, time.UTC)
}

// NextWorkingDay shifts Saturdays forward to Monday and Sundays forward to
// Monday; weekdays pass through unchanged.
func NextWorkingDay(t time.Time) time.Time {
	switch t.Weekday() {
	case time.Saturday:
		return t.AddDate(0, 0, 2)
	case time.Sunday:
		return t.AddDate(0, 0, 1)
	default:
		return t
	}
}

// PeriodStart returns the canonical start date of the accounting period
// labeled year-month. The period starts on the 25th of the previous calendar
// month, except when the previous month is December, where it starts on the
// 19th. The computed day is shifted to the next working day if it lands on a
// weekend.
func PeriodStart(year int, month time.Month) time.Time {
	// Normalize to the previous calendar month.
	prev := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	py, pm := prev.Year(), prev.Month()

	baseDay := 25
	if pm == time.December {
		baseDay = 19
	}

	return NextWorkingDay(time.Date(py, pm, baseDay, 0, 0, 0, 0, time.UTC))
}

// Key formats a period label as "YYYY-MM".
func Key(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// ParseKey splits a "YYYY-MM" period label.
func ParseKey(key string) (int, time.Month, error) {
	var year, month int
	if _, err := fmt.Sscanf(key, "%4d-%2d", &year, &month); err != nil {
		return 0, 0, fmt.Errorf("invalid period key %q: %w", key, err)
	}
	if month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("invalid period key %q: month out of range", key)
	}
	return year, time.Month(month), nil
}

// NextKey returns the label of the period following key.
func NextKey(key string) (string, error) {
	year, month, err := ParseKey(key)
	if err != nil {
		return "", err
	}
	next := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return Key(next.Year(), next.Month()), nil
}

// Calendar classifies dates into accounting periods, honoring explicit
// per-period overrides. The zero value behaves as a pure standard calendar.
type Calendar struct {
	overrides []models.CyclePeriod
}

// NewCalendar builds a Calendar from stored cycle overrides.
func NewCalendar(overrides []models.CyclePeriod) *Calendar {
	return &Calendar{overrides: overrides}
}

// KeyForDate returns the period label a date belongs to. Overrides win:
// a date inside an override's [start, end] range (inclusive) takes that
// override's key. Otherwise the standard rule applies: a date on or after
// the start of the next month's period belongs to the next month's period,
// else it stays in its own calendar month's period. A date exactly equal to
// a period start always classifies into the new period.
func (c *Calendar) KeyForDate(t time.Time) string {
	d := DateOnly(t)

	for _, o := range c.overrides {
		if !d.Before(DateOnly(o.StartDate)) && !d.After(DateOnly(o.EndDate)) {
			return o.Key
		}
	}

	next := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	if !d.Before(PeriodStart(next.Year(), next.Month())) {
		return Key(next.Year(), next.Month())
	}
	return Key(d.Year(), d.Month())
}

// PeriodStartFor returns the anchor start date for the period labeled
// year-month: the override's start date when one exists, otherwise the
// standard computed start. Budget instances are dated on this anchor.
func (c *Calendar) PeriodStartFor(year int, month time.Month) time.Time {
	key := Key(year, month)
	for _, o := range c.overrides {
		if o.Key == key {
			return DateOnly(o.StartDate)
		}
	}
	return PeriodStart(year, month)
}

// PeriodBounds returns the inclusive date range of the period labeled
// year-month. Without an override the period ends the day before the next
// period's standard start.
func (c *Calendar) PeriodBounds(year int, month time.Month) (time.Time, time.Time) {
	key := Key(year, month)
	for _, o := range c.overrides {
		if o.Key == key {
			return DateOnly(o.StartDate), DateOnly(o.EndDate)
		}
	}

	start := PeriodStart(year, month)
	next := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	end := c.PeriodStartFor(next.Year(), next.Month()).AddDate(0, 0, -1)
	return start, end
}

// CurrentPeriod returns the label and bounds of the period containing now.
func (c *Calendar) CurrentPeriod(now time.Time) (string, time.Time, time.Time) {
	key := c.KeyForDate(now)
	year, month, err := ParseKey(key)
	if err != nil {
		// KeyForDate only produces well-formed keys.
		panic(err)
	}
	start, end := c.PeriodBounds(year, month)
	return key, start, end
}

func lastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1).Day()
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
