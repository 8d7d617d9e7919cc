package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/samber/mo"
	"github.com/teambition/rrule-go"
)

// Draft is the editable, possibly incomplete recurrence selection coming
// from an event form. Which fields matter depends on Period.
type Draft struct {
	Period Period `json:"period"`

	// Day is a weekday name for weekly, a day of month or "<nth> <weekday>"
	// for monthly, and a day of month for yearly.
	Day string `json:"day,omitempty"`

	// DateOfMonth (1-31) is used for monthly only.
	DateOfMonth mo.Option[int] `json:"dateOfMonth"`
	// Nth and Weekday are used together for monthly when DateOfMonth is unset.
	Nth     string `json:"nth,omitempty"`
	Weekday string `json:"weekday,omitempty"`

	// Month (1-12) is used for yearly only.
	Month mo.Option[int] `json:"month"`
}

// Record is the canonical, fully resolved form of a rule as persisted with
// its event.
type Record struct {
	Period Period `json:"period" yaml:"period"`
	Day    string `json:"day,omitempty" yaml:"day,omitempty"`
	Month  int    `json:"month,omitempty" yaml:"month,omitempty"`
}

// Rule is a resolved recurrence rule. The set of implementations is closed:
// DailyRule, WeeklyRule, MonthlyDateRule, MonthlyWeekdayRule and YearlyRule.
type Rule interface {
	Period() Period
	// Record flattens the rule into its persisted form.
	Record() Record

	describe() string
	option() rrule.ROption
}

type DailyRule struct{}

type WeeklyRule struct {
	Weekday time.Weekday
}

// MonthlyDateRule fires on a fixed day of every month. Months shorter than
// Day are skipped.
type MonthlyDateRule struct {
	Day int
}

// MonthlyWeekdayRule fires on the Nth Weekday of every month.
type MonthlyWeekdayRule struct {
	N       Nth
	Weekday time.Weekday
}

type YearlyRule struct {
	Month time.Month
	Day   int
}

func (DailyRule) Period() Period          { return Daily }
func (WeeklyRule) Period() Period         { return Weekly }
func (MonthlyDateRule) Period() Period    { return Monthly }
func (MonthlyWeekdayRule) Period() Period { return Monthly }
func (YearlyRule) Period() Period         { return Yearly }

func (DailyRule) Record() Record {
	return Record{Period: Daily}
}

func (r WeeklyRule) Record() Record {
	return Record{Period: Weekly, Day: WeekdayName(r.Weekday)}
}

func (r MonthlyDateRule) Record() Record {
	return Record{Period: Monthly, Day: strconv.Itoa(r.Day)}
}

func (r MonthlyWeekdayRule) Record() Record {
	return Record{Period: Monthly, Day: r.N.String() + " " + WeekdayName(r.Weekday)}
}

func (r YearlyRule) Record() Record {
	return Record{Period: Yearly, Day: strconv.Itoa(r.Day), Month: int(r.Month)}
}

// Rule parses a persisted record back into a Rule.
func (r Record) Rule() (Rule, error) {
	period, err := ParsePeriod(string(r.Period))
	if err != nil {
		return nil, err
	}

	switch period {
	case Daily:
		return DailyRule{}, nil
	case Weekly:
		wd, ok := ParseWeekday(r.Day)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not a weekday", ErrInvalidDay, r.Day)
		}
		return WeeklyRule{Weekday: wd}, nil
	case Monthly:
		return parseMonthlyDay(r.Day)
	case Yearly:
		if r.Month < 1 || r.Month > 12 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidMonth, r.Month)
		}
		day, err := strconv.Atoi(strings.TrimSpace(r.Day))
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a day of month", ErrInvalidDay, r.Day)
		}
		return yearlyRule(time.Month(r.Month), day)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPeriod, r.Period)
}

// parseMonthlyDay accepts a day of month ("15") or "<nth> <weekday>".
func parseMonthlyDay(s string) (Rule, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return monthlyDateRule(n)
	}
	if n, wd, ok := splitNthWeekday(s); ok {
		return MonthlyWeekdayRule{N: n, Weekday: wd}, nil
	}
	return nil, fmt.Errorf("%w: %q is neither a day of month nor an nth weekday", ErrInvalidDay, s)
}

func monthlyDateRule(day int) (Rule, error) {
	if day < 1 || day > 31 {
		return nil, fmt.Errorf("%w: day of month %d", ErrInvalidDay, day)
	}
	return MonthlyDateRule{Day: day}, nil
}

func yearlyRule(m time.Month, day int) (Rule, error) {
	if day < 1 || day > daysInMonth(m) {
		return nil, fmt.Errorf("%w: %s has no day %d", ErrInvalidDay, MonthName(m), day)
	}
	return YearlyRule{Month: m, Day: day}, nil
}
