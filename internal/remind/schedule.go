// Package remind fires reminders ahead of event occurrences on a cron
// scheduler.
package remind

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/teambition/rrule-go"

	"eventsched/internal/model"
	"eventsched/internal/schedule"
)

// ruleSchedule fires lead before each occurrence of a recurring event.
type ruleSchedule struct {
	rule *rrule.RRule
	lead time.Duration
}

func (s ruleSchedule) Next(t time.Time) time.Time {
	next := s.rule.After(t.Add(s.lead), false)
	if next.IsZero() {
		return next
	}
	return next.Add(-s.lead)
}

// onceSchedule fires lead before a one-off event, then never again.
type onceSchedule struct {
	at time.Time
}

func (s onceSchedule) Next(t time.Time) time.Time {
	if s.at.After(t) {
		return s.at
	}
	return time.Time{}
}

// ScheduleFor returns the cron schedule of reminders for ev in loc.
func ScheduleFor(ev model.Event, loc *time.Location, lead time.Duration) (cron.Schedule, error) {
	start, err := ev.Start(loc)
	if err != nil {
		return nil, err
	}
	rule, err := ev.Rule()
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return onceSchedule{at: start.Add(-lead)}, nil
	}
	r, err := schedule.NewRRule(rule, start)
	if err != nil {
		return nil, err
	}
	return ruleSchedule{rule: r, lead: lead}, nil
}
