package schedule

import (
	"strconv"
	"strings"
	"time"

	"github.com/samber/mo"
)

// NoRulePlaceholder is shown where a preview is absent.
const NoRulePlaceholder = "No recurring rule set yet"

// Preview describes d resolved against anchorDate, e.g.
// "Every 3rd Sunday of each month at 3:00 PM". It is absent when the period
// is unset, the anchor date or time does not parse, or the draft is invalid.
func Preview(d Draft, anchorDate, clock string) mo.Option[string] {
	return Engine{}.Preview(d, anchorDate, clock)
}

// Preview describes d resolved against anchorDate.
func (e Engine) Preview(d Draft, anchorDate, clock string) mo.Option[string] {
	anchor, err := ParseAnchorDate(anchorDate)
	if err != nil {
		return mo.None[string]()
	}
	rule, err := e.Resolve(d, anchor)
	if err != nil {
		return mo.None[string]()
	}
	return Describe(rule, clock)
}

// PreviewRecord describes a stored record.
func PreviewRecord(r Record, clock string) mo.Option[string] {
	rule, err := r.Rule()
	if err != nil {
		return mo.None[string]()
	}
	return Describe(rule, clock)
}

// Describe renders rule at the given "HH:MM" time. An empty clock leaves
// the time out.
func Describe(rule Rule, clock string) mo.Option[string] {
	if rule == nil {
		return mo.None[string]()
	}
	var at string
	if strings.TrimSpace(clock) != "" {
		h, m, err := ParseClock(clock)
		if err != nil {
			return mo.None[string]()
		}
		at = " at " + time.Date(0, 1, 1, h, m, 0, 0, time.UTC).Format("3:04 PM")
	}
	return mo.Some("Every " + rule.describe() + at)
}

func (DailyRule) describe() string {
	return "day"
}

func (r WeeklyRule) describe() string {
	return WeekdayName(r.Weekday)
}

func (r MonthlyDateRule) describe() string {
	return Ordinal(r.Day) + " of each month"
}

func (r MonthlyWeekdayRule) describe() string {
	return r.N.String() + " " + WeekdayName(r.Weekday) + " of each month"
}

func (r YearlyRule) describe() string {
	return MonthName(r.Month) + " " + strconv.Itoa(r.Day)
}
