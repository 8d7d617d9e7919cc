package ics

import (
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "eventsched/internal/log"
	"eventsched/internal/model"
	"eventsched/internal/schedule"
)

const productID = "-//eventsched//Event Schedules//EN"

// Floating local date-time; the calendar-wide zone is set via X-WR-TIMEZONE.
const floatingLayout = "20060102T150405"

// Export renders events as an iCalendar document. Recurring events carry an
// RRULE and EXDATEs. Events whose date, time or schedule do not parse are
// logged and left out.
func Export(events []model.Event, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRTimezone(loc.String())

	stamp := time.Now().UTC()
	written := 0
	for _, ev := range events {
		if err := addEvent(cal, ev, loc, stamp); err != nil {
			appLog.Error("ics export: skipping event", err, "id", ev.ID, "title", ev.Title)
			continue
		}
		written++
	}

	appLog.Info("ics export completed", "event_count", written, "skipped", len(events)-written)
	return cal.Serialize()
}

func addEvent(cal *ical.Calendar, ev model.Event, loc *time.Location, stamp time.Time) error {
	start, err := ev.Start(loc)
	if err != nil {
		return err
	}
	rule, err := ev.Rule()
	if err != nil {
		return err
	}

	ve := cal.AddEvent(ev.ID)
	ve.SetDtStampTime(stamp)
	ve.SetSummary(ev.Title)
	if ev.Description != "" {
		ve.SetDescription(ev.Description)
	}
	if ev.Location != "" {
		ve.SetLocation(ev.Location)
	}
	ve.SetProperty(ical.ComponentPropertyDtStart, start.Format(floatingLayout))
	ve.SetProperty(ical.ComponentPropertyDtEnd, start.Add(ev.Duration()).Format(floatingLayout))

	if rule == nil {
		return nil
	}
	ve.AddProperty(ical.ComponentPropertyRrule, schedule.RRuleString(rule))
	for _, d := range ev.ExDates {
		ex, err := exDateAt(d, start)
		if err != nil {
			appLog.Error("ics export: bad exdate", err, "id", ev.ID, "exdate", d)
			continue
		}
		ve.AddProperty(ical.ComponentPropertyExdate, ex.Format(floatingLayout))
	}
	return nil
}

// exDateAt places an excluded date at the event's own time of day.
func exDateAt(d string, start time.Time) (time.Time, error) {
	day, err := schedule.ParseAnchorDate(d)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), start.Hour(), start.Minute(), 0, 0, start.Location()), nil
}
