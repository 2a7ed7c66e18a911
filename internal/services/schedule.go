package services

import (
	"fmt"
	"time"

	"fluxo/internal/cycle"
	"fluxo/internal/models"
)

// schedule is the validated, type-specific expansion of a forecast rule.
// Each variant carries only the fields its rule type needs; newSchedule is
// the storage-boundary validation for loosely configured rule rows.
type schedule interface {
	// dates returns the instance dates the rule should produce for the
	// generation window. Budget schedules may return anchor dates slightly
	// before windowStart when the accounting period containing windowStart
	// begins earlier; the generator's lookback preload accounts for that.
	dates(windowStart, windowEnd time.Time, cal *cycle.Calendar) []time.Time
}

type oneOffSchedule struct {
	date time.Time
}

func (s oneOffSchedule) dates(windowStart, windowEnd time.Time, _ *cycle.Calendar) []time.Time {
	if s.date.Before(windowStart) || s.date.After(windowEnd) {
		return nil
	}
	return []time.Time{s.date}
}

type installmentSchedule struct {
	first time.Time
	count int
}

func (s installmentSchedule) dates(windowStart, windowEnd time.Time, _ *cycle.Calendar) []time.Time {
	var out []time.Time
	for i := 0; i < s.count; i++ {
		d := cycle.AddMonthsClamped(s.first, i)
		if d.After(windowEnd) {
			break
		}
		if d.Before(windowStart) {
			continue
		}
		out = append(out, d)
	}
	return out
}

type recurringSchedule struct {
	start time.Time
	end   *time.Time
}

func (s recurringSchedule) dates(windowStart, windowEnd time.Time, _ *cycle.Calendar) []time.Time {
	var out []time.Time
	for i := 0; ; i++ {
		d := cycle.AddMonthsClamped(s.start, i)
		if s.end != nil && d.After(cycle.DateOnly(*s.end)) {
			break
		}
		if d.After(windowEnd) {
			break
		}
		if d.Before(windowStart) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// budgetSchedule expands on the accounting-period calendar, not the
// Gregorian one: each period gets exactly one instance dated on the
// period's (possibly overridden) start.
type budgetSchedule struct {
	start time.Time
	end   *time.Time
}

func (s budgetSchedule) dates(windowStart, windowEnd time.Time, cal *cycle.Calendar) []time.Time {
	from := s.start
	if windowStart.After(from) {
		from = windowStart
	}

	key := cal.KeyForDate(from)
	var out []time.Time
	for {
		year, month, err := cycle.ParseKey(key)
		if err != nil {
			return out
		}
		anchor := cal.PeriodStartFor(year, month)
		if anchor.After(windowEnd) {
			break
		}
		if s.end != nil && anchor.After(cycle.DateOnly(*s.end)) {
			break
		}
		out = append(out, anchor)

		next, err := cycle.NextKey(key)
		if err != nil {
			break
		}
		key = next
	}
	return out
}

// newSchedule validates a rule row and returns its typed schedule. Malformed
// rules (missing installment count, unsupported frequency, zero dates)
// produce an error so the generator can skip them without aborting the
// batch.
func newSchedule(rule *models.ForecastRule) (schedule, error) {
	if rule.StartDate.IsZero() {
		return nil, fmt.Errorf("rule %s: missing start date", rule.ID)
	}
	start := cycle.DateOnly(rule.StartDate)

	switch rule.Type {
	case models.RuleTypeOneOff:
		return oneOffSchedule{date: start}, nil

	case models.RuleTypeInstallment:
		if rule.InstallmentsCount == nil || *rule.InstallmentsCount <= 0 {
			return nil, fmt.Errorf("rule %s: installment rule without a positive installments count", rule.ID)
		}
		return installmentSchedule{first: start, count: *rule.InstallmentsCount}, nil

	case models.RuleTypeRecurring:
		if rule.Frequency != models.FrequencyMonthly {
			return nil, fmt.Errorf("rule %s: unsupported frequency %q", rule.ID, rule.Frequency)
		}
		return recurringSchedule{start: start, end: rule.EndDate}, nil

	case models.RuleTypeBudget:
		return budgetSchedule{start: start, end: rule.EndDate}, nil

	default:
		return nil, fmt.Errorf("rule %s: unknown rule type %q", rule.ID, rule.Type)
	}
}
