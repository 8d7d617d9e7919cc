// Package schedule resolves recurrence selections made on an event form into
// canonical schedule records, renders them as human-readable sentences and
// maps stored records back into editable drafts.
//
// Everything in this package is a pure function of its inputs and is safe to
// call concurrently.
package schedule

import (
	"fmt"
	"strings"
	"time"
)

// Period is the recurrence frequency class of a rule.
type Period string

const (
	Daily   Period = "daily"
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
	Yearly  Period = "yearly"
)

// Sunday-first, indexed by time.Weekday.
var weekdayNames = [7]string{
	"Sunday",
	"Monday",
	"Tuesday",
	"Wednesday",
	"Thursday",
	"Friday",
	"Saturday",
}

// Indexed by time.Month - 1.
var monthNames = [12]string{
	"January",
	"February",
	"March",
	"April",
	"May",
	"June",
	"July",
	"August",
	"September",
	"October",
	"November",
	"December",
}

// ParsePeriod returns the canonical Period for s (case-insensitive).
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case Daily, Weekly, Monthly, Yearly:
		return p, nil
	case "":
		return "", ErrMissingPeriod
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPeriod, s)
}

// WeekdayName returns the English name of wd, e.g. "Sunday".
func WeekdayName(wd time.Weekday) string {
	if wd < time.Sunday || wd > time.Saturday {
		return ""
	}
	return weekdayNames[wd]
}

// MonthName returns the English name of m, e.g. "March".
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m-1]
}

// ParseWeekday accepts a full weekday name or its three-letter abbreviation,
// in any case.
func ParseWeekday(s string) (time.Weekday, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 3 {
		return 0, false
	}
	for i, name := range weekdayNames {
		if strings.EqualFold(s, name) || strings.EqualFold(s, name[:3]) {
			return time.Weekday(i), true
		}
	}
	return 0, false
}

// daysInMonth reports the longest length of m, counting February as 29 days.
func daysInMonth(m time.Month) int {
	return time.Date(2024, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
