package schedule

import (
	"strconv"
	"strings"
	"time"
)

// Ordinal returns n with its English ordinal suffix: 1st, 2nd, 3rd, 4th,
// 11th, 12th, 13th, 21st, 101st.
func Ordinal(n int) string {
	return strconv.Itoa(n) + ordinalSuffix(n)
}

func ordinalSuffix(n int) string {
	if n < 0 {
		n = -n
	}
	switch n % 100 {
	case 11, 12, 13:
		return "th"
	}
	switch n % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	}
	return "th"
}

// Nth selects an occurrence of a weekday within a month: 1..5, or Last.
type Nth int

// Last is the final occurrence of a weekday in a month.
const Last Nth = -1

// ParseNth accepts "1st" through "5th" and "last", in any case.
func ParseNth(s string) (Nth, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1st":
		return 1, true
	case "2nd":
		return 2, true
	case "3rd":
		return 3, true
	case "4th":
		return 4, true
	case "5th":
		return 5, true
	case "last":
		return Last, true
	}
	return 0, false
}

func (n Nth) String() string {
	if n == Last {
		return "last"
	}
	return Ordinal(int(n))
}

func (n Nth) valid() bool {
	return n == Last || (n >= 1 && n <= 5)
}

// NthWeekday describes t as the nth occurrence of its weekday in its month,
// e.g. 2025-09-21 is "3rd Sunday".
//
// The week number is ceil(day/7) counted from the 1st, never "last".
func NthWeekday(t time.Time) string {
	n, wd := nthWeekdayOf(t)
	return n.String() + " " + WeekdayName(wd)
}

func nthWeekdayOf(t time.Time) (Nth, time.Weekday) {
	return Nth((t.Day() + 6) / 7), t.Weekday()
}

// splitNthWeekday parses "<nth> <weekday>", splitting on the first space.
func splitNthWeekday(s string) (Nth, time.Weekday, bool) {
	s = strings.TrimSpace(s)
	i := strings.IndexByte(s, ' ')
	if i < 0 {
		return 0, 0, false
	}
	n, ok := ParseNth(s[:i])
	if !ok {
		return 0, 0, false
	}
	wd, ok := ParseWeekday(s[i+1:])
	if !ok {
		return 0, 0, false
	}
	return n, wd, true
}
