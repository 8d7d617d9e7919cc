package schedule

import (
	"strconv"
	"strings"

	"github.com/samber/mo"
)

// Denormalize maps a stored record back into an editable draft.
//
// A monthly day that is neither a number nor "<nth> <weekday>" is passed
// through as Weekday with Nth unset, leaving the form to correct it.
func Denormalize(r Record) Draft {
	d := Draft{Period: r.Period}

	switch r.Period {
	case Monthly:
		day := strings.TrimSpace(r.Day)
		if n, err := strconv.Atoi(day); err == nil {
			d.DateOfMonth = mo.Some(n)
			return d
		}
		if n, wd, ok := splitNthWeekday(day); ok {
			d.Nth = n.String()
			d.Weekday = WeekdayName(wd)
			return d
		}
		d.Weekday = r.Day
	case Yearly:
		d.Day = r.Day
		if r.Month != 0 {
			d.Month = mo.Some(r.Month)
		}
	default:
		d.Day = r.Day
	}
	return d
}
