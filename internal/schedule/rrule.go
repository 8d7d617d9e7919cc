package schedule

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// Indexed by time.Weekday.
var rruleWeekdays = [7]rrule.Weekday{
	rrule.SU,
	rrule.MO,
	rrule.TU,
	rrule.WE,
	rrule.TH,
	rrule.FR,
	rrule.SA,
}

func toRRuleWeekday(wd time.Weekday) rrule.Weekday {
	return rruleWeekdays[wd]
}

// rrule-go counts weekdays from Monday = 0.
func fromRRuleWeekday(wd rrule.Weekday) time.Weekday {
	return time.Weekday((wd.Day() + 1) % 7)
}

func (DailyRule) option() rrule.ROption {
	return rrule.ROption{Freq: rrule.DAILY}
}

func (r WeeklyRule) option() rrule.ROption {
	return rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: []rrule.Weekday{toRRuleWeekday(r.Weekday)},
	}
}

func (r MonthlyDateRule) option() rrule.ROption {
	return rrule.ROption{
		Freq:       rrule.MONTHLY,
		Bymonthday: []int{r.Day},
	}
}

func (r MonthlyWeekdayRule) option() rrule.ROption {
	wd := toRRuleWeekday(r.Weekday)
	return rrule.ROption{
		Freq:      rrule.MONTHLY,
		Byweekday: []rrule.Weekday{wd.Nth(int(r.N))},
	}
}

func (r YearlyRule) option() rrule.ROption {
	return rrule.ROption{
		Freq:       rrule.YEARLY,
		Bymonth:    []int{int(r.Month)},
		Bymonthday: []int{r.Day},
	}
}

// NewRRule builds the iCalendar recurrence of rule starting at dtstart. The
// time of day of every occurrence is taken from dtstart.
func NewRRule(rule Rule, dtstart time.Time) (*rrule.RRule, error) {
	opt := rule.option()
	opt.Dtstart = dtstart
	return rrule.NewRRule(opt)
}

// RRuleString renders rule as an RRULE value, e.g. "FREQ=MONTHLY;BYDAY=+3SU".
func RRuleString(rule Rule) string {
	opt := rule.option()
	return opt.RRuleString()
}

// Upcoming returns up to n occurrences of rule starting at dtstart that fall
// at or after from.
func Upcoming(rule Rule, dtstart, from time.Time, n int) ([]time.Time, error) {
	if n <= 0 {
		return nil, nil
	}
	r, err := NewRRule(rule, dtstart)
	if err != nil {
		return nil, err
	}

	out := make([]time.Time, 0, n)
	cursor, inc := from, true
	for len(out) < n {
		next := r.After(cursor, inc)
		if next.IsZero() {
			break
		}
		out = append(out, next)
		cursor, inc = next, false
	}
	return out, nil
}

// FromRRule maps an RRULE value back to a Rule. Parts missing from the rule
// are taken from dtstart. Intervals, COUNT/UNTIL, BYSETPOS and multi-valued
// selectors have no record equivalent and yield ErrUnsupportedRule.
func FromRRule(value string, dtstart time.Time) (Rule, error) {
	opt, err := rrule.StrToROption(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedRule, err)
	}

	if opt.Interval > 1 || opt.Count > 0 || !opt.Until.IsZero() ||
		len(opt.Bysetpos) > 0 || len(opt.Byyearday) > 0 || len(opt.Byweekno) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedRule, value)
	}
	if len(opt.Bymonth) > 1 || len(opt.Bymonthday) > 1 || len(opt.Byweekday) > 1 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedRule, value)
	}

	switch opt.Freq {
	case rrule.DAILY:
		if len(opt.Bymonth)+len(opt.Bymonthday)+len(opt.Byweekday) > 0 {
			break
		}
		return DailyRule{}, nil

	case rrule.WEEKLY:
		if len(opt.Bymonth)+len(opt.Bymonthday) > 0 {
			break
		}
		if len(opt.Byweekday) == 0 {
			return WeeklyRule{Weekday: dtstart.Weekday()}, nil
		}
		wd := opt.Byweekday[0]
		if wd.N() != 0 {
			break
		}
		return WeeklyRule{Weekday: fromRRuleWeekday(wd)}, nil

	case rrule.MONTHLY:
		if len(opt.Bymonth) > 0 {
			break
		}
		switch {
		case len(opt.Bymonthday) == 1 && len(opt.Byweekday) == 0:
			return monthlyDateRule(opt.Bymonthday[0])
		case len(opt.Byweekday) == 1 && len(opt.Bymonthday) == 0:
			wd := opt.Byweekday[0]
			n := Nth(wd.N())
			if !n.valid() {
				break
			}
			return MonthlyWeekdayRule{N: n, Weekday: fromRRuleWeekday(wd)}, nil
		case len(opt.Byweekday) == 0 && len(opt.Bymonthday) == 0:
			return MonthlyDateRule{Day: dtstart.Day()}, nil
		}

	case rrule.YEARLY:
		if len(opt.Byweekday) > 0 {
			break
		}
		month, day := dtstart.Month(), dtstart.Day()
		if len(opt.Bymonth) == 1 {
			month = time.Month(opt.Bymonth[0])
		}
		if len(opt.Bymonthday) == 1 {
			day = opt.Bymonthday[0]
		}
		if month < time.January || month > time.December {
			break
		}
		return yearlyRule(month, day)
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupportedRule, value)
}
