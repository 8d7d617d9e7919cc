package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Engine turns drafts into records. The zero value falls back to the anchor
// date for incomplete monthly rules.
type Engine struct {
	// StrictMonthly rejects a monthly draft that names neither a date of
	// month nor an nth weekday, instead of deriving one from the anchor.
	StrictMonthly bool
}

var anchorLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseAnchorDate parses an event date. Only the calendar date is kept; the
// result is midnight UTC.
func ParseAnchorDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range anchorLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidAnchorDate, s)
}

// ParseClock parses a 24-hour "HH:MM" time of day.
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return t.Hour(), t.Minute(), nil
}

// Normalize resolves d against the event's anchor date into a record.
func Normalize(d Draft, anchorDate string) (Record, error) {
	return Engine{}.Normalize(d, anchorDate)
}

// Normalize resolves d against the event's anchor date into a record.
func (e Engine) Normalize(d Draft, anchorDate string) (Record, error) {
	anchor, err := ParseAnchorDate(anchorDate)
	if err != nil {
		return Record{}, err
	}
	rule, err := e.Resolve(d, anchor)
	if err != nil {
		return Record{}, err
	}
	return rule.Record(), nil
}

// Resolve turns d into a Rule, filling anything left unset from anchor.
func (e Engine) Resolve(d Draft, anchor time.Time) (Rule, error) {
	period, err := ParsePeriod(string(d.Period))
	if err != nil {
		return nil, err
	}

	switch period {
	case Daily:
		return DailyRule{}, nil
	case Weekly:
		return resolveWeekly(d, anchor)
	case Monthly:
		return e.resolveMonthly(d, anchor)
	case Yearly:
		return resolveYearly(d, anchor)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPeriod, d.Period)
}

func resolveWeekly(d Draft, anchor time.Time) (Rule, error) {
	if strings.TrimSpace(d.Day) == "" {
		return WeeklyRule{Weekday: anchor.Weekday()}, nil
	}
	wd, ok := ParseWeekday(d.Day)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a weekday", ErrInvalidDay, d.Day)
	}
	return WeeklyRule{Weekday: wd}, nil
}

// resolveMonthly takes the first of: date of month, nth+weekday, the day
// token, the anchor's own nth weekday.
func (e Engine) resolveMonthly(d Draft, anchor time.Time) (Rule, error) {
	if dom, ok := d.DateOfMonth.Get(); ok {
		return monthlyDateRule(dom)
	}

	if strings.TrimSpace(d.Nth) != "" && strings.TrimSpace(d.Weekday) != "" {
		n, ok := ParseNth(d.Nth)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not an nth", ErrInvalidDay, d.Nth)
		}
		wd, ok := ParseWeekday(d.Weekday)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not a weekday", ErrInvalidDay, d.Weekday)
		}
		return MonthlyWeekdayRule{N: n, Weekday: wd}, nil
	}

	if strings.TrimSpace(d.Day) != "" {
		return parseMonthlyDay(d.Day)
	}

	if e.StrictMonthly {
		return nil, ErrIncompleteMonthlyRule
	}
	n, wd := nthWeekdayOf(anchor)
	return MonthlyWeekdayRule{N: n, Weekday: wd}, nil
}

// resolveYearly prefers the draft's month and day, falling back to the
// anchor's.
func resolveYearly(d Draft, anchor time.Time) (Rule, error) {
	month := anchor.Month()
	if m, ok := d.Month.Get(); ok {
		if m < 1 || m > 12 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidMonth, m)
		}
		month = time.Month(m)
	}

	day := anchor.Day()
	if s := strings.TrimSpace(d.Day); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a day of month", ErrInvalidDay, d.Day)
		}
		day = n
	}
	return yearlyRule(month, day)
}
