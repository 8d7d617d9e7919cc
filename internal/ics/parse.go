package ics

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	ical "github.com/arran4/golang-ical"

	appLog "eventsched/internal/log"
	"eventsched/internal/model"
	"eventsched/internal/schedule"
)

// ParseResult holds the events read from an ICS payload.
type ParseResult struct {
	Events []model.Event
	// Skipped records UIDs of VEVENTs that could not be represented, such as
	// overrides of single instances or rules with no record equivalent.
	Skipped []string
}

// ParseICS reads VEVENTs from body into events in loc. Times with a TZID or
// in UTC are converted to loc; floating times are taken as loc.
func ParseICS(body []byte, loc *time.Location) (ParseResult, error) {
	var res ParseResult
	if len(body) == 0 {
		return res, errors.New("empty ICS body")
	}
	if loc == nil {
		loc = time.Local
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return res, err
	}

	for _, ve := range cal.Events() {
		ev, err := parseVEvent(ve, loc)
		if err != nil {
			uid := ""
			if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
				uid = p.Value
			}
			appLog.Warn("ics vevent skipped", "uid", uid, "reason", err.Error())
			res.Skipped = append(res.Skipped, uid)
			continue
		}
		res.Events = append(res.Events, ev)
	}

	appLog.Info("ics parse completed", "event_count", len(res.Events), "skipped", len(res.Skipped))
	return res, nil
}

func parseVEvent(ve *ical.VEvent, loc *time.Location) (model.Event, error) {
	var ev model.Event

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return ev, errors.New("missing UID")
	}
	ev.ID = uidProp.Value

	if ve.GetProperty("RECURRENCE-ID") != nil {
		return ev, errors.New("single-instance override")
	}

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		ev.Title = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		ev.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		ev.Location = p.Value
	}

	startProp := ve.GetProperty(ical.ComponentPropertyDtStart)
	if startProp == nil {
		return ev, errors.New("missing DTSTART")
	}
	srcStart, allDay, err := parseICSTime(startProp.Value, tzidOf(startProp.ICalParameters), loc)
	if err != nil {
		return ev, err
	}
	start := srcStart.In(loc)
	ev.Date = start.Format("2006-01-02")
	if !allDay {
		ev.Time = start.Format("15:04")
	}

	if endProp := ve.GetProperty(ical.ComponentPropertyDtEnd); endProp != nil {
		if end, _, err := parseICSTime(endProp.Value, tzidOf(endProp.ICalParameters), loc); err == nil && end.After(start) {
			ev.DurationMinutes = int(end.Sub(start) / time.Minute)
		}
	}

	rruleProp := ve.GetProperty(ical.ComponentPropertyRrule)
	if rruleProp == nil || rruleProp.Value == "" {
		return ev, nil
	}
	// BYDAY and BYMONTHDAY name days in the zone of DTSTART.
	rule, err := schedule.FromRRule(rruleProp.Value, srcStart)
	if err != nil {
		return ev, err
	}
	rule, err = shiftRule(rule, civilDaysBetween(srcStart, start))
	if err != nil {
		return ev, err
	}
	rec := rule.Record()
	ev.Recurrent = true
	ev.Schedule = &rec

	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		tzid := tzidOf(p.ICalParameters)
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if t, _, err := parseICSTime(part, tzid, loc); err == nil {
				ev.ExDates = append(ev.ExDates, t.In(loc).Format("2006-01-02"))
			}
		}
	}

	return ev, nil
}

func tzidOf(params map[string][]string) string {
	if vs, ok := params["TZID"]; ok && len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// civilDaysBetween returns how many calendar days b's date is after a's,
// each read in its own zone.
func civilDaysBetween(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da) / (24 * time.Hour))
}

// shiftRule moves rule's day selectors by days. Only daily and weekly rules
// survive a shift; month days and nth weekdays would land in other months.
func shiftRule(rule schedule.Rule, days int) (schedule.Rule, error) {
	if days == 0 {
		return rule, nil
	}
	switch r := rule.(type) {
	case schedule.DailyRule:
		return r, nil
	case schedule.WeeklyRule:
		wd := (int(r.Weekday) + days%7 + 7) % 7
		return schedule.WeeklyRule{Weekday: time.Weekday(wd)}, nil
	}
	return nil, fmt.Errorf("%w: %s rule changes date between zones", schedule.ErrUnsupportedRule, rule.Period())
}

// parseICSTime parses DATE, floating DATE-TIME, UTC DATE-TIME and TZID
// DATE-TIME values. The result is in the value's own zone: UTC, its TZID,
// or loc for floating and DATE values. allDay reports a DATE value.
func parseICSTime(v, tzid string, loc *time.Location) (t time.Time, allDay bool, err error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false, errors.New("empty time value")
	}

	// UTC form, e.g., 20250101T090000Z
	if strings.HasSuffix(v, "Z") {
		t, err = time.Parse("20060102T150405Z", v)
		return t, false, err
	}

	if strings.Contains(v, "T") {
		src := loc
		if tzid != "" {
			if l, lerr := time.LoadLocation(tzid); lerr == nil {
				src = l
			}
		}
		t, err = time.ParseInLocation(floatingLayout, v, src)
		return t, false, err
	}

	// Date-only (all-day), e.g., 20250101
	t, err = time.ParseInLocation("20060102", v, loc)
	return t, true, err
}
