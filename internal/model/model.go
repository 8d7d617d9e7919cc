package model

import (
	"time"

	"github.com/samber/mo"

	"eventsched/internal/schedule"
)

// DefaultDuration is used for events without an explicit duration.
const DefaultDuration = time.Hour

// Event is a dashboard event. Date is the anchor date of its schedule.
type Event struct {
	ID          string `yaml:"id" json:"id"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Location    string `yaml:"location,omitempty" json:"location,omitempty"`

	// Date is "YYYY-MM-DD" and Time is 24-hour "HH:MM", both in the
	// configured timezone.
	Date string `yaml:"date" json:"date"`
	Time string `yaml:"time" json:"time"`

	DurationMinutes int `yaml:"duration_minutes,omitempty" json:"duration_minutes,omitempty"`

	Recurrent bool             `yaml:"recurrent" json:"recurrent"`
	Schedule  *schedule.Record `yaml:"schedule,omitempty" json:"schedule,omitempty"`

	// ExDates lists "YYYY-MM-DD" dates on which a recurring event is skipped.
	ExDates []string `yaml:"exdates,omitempty" json:"exdates,omitempty"`
}

// Start returns the first start of the event in loc.
func (e Event) Start(loc *time.Location) (time.Time, error) {
	anchor, err := schedule.ParseAnchorDate(e.Date)
	if err != nil {
		return time.Time{}, err
	}
	var h, m int
	if e.Time != "" {
		if h, m, err = schedule.ParseClock(e.Time); err != nil {
			return time.Time{}, err
		}
	}
	return time.Date(anchor.Year(), anchor.Month(), anchor.Day(), h, m, 0, 0, loc), nil
}

func (e Event) Duration() time.Duration {
	if e.DurationMinutes <= 0 {
		return DefaultDuration
	}
	return time.Duration(e.DurationMinutes) * time.Minute
}

// Rule returns the event's recurrence rule, or nil for a one-off event.
func (e Event) Rule() (schedule.Rule, error) {
	if !e.Recurrent || e.Schedule == nil {
		return nil, nil
	}
	return e.Schedule.Rule()
}

// Preview describes the event's recurrence; absent for one-off events.
func (e Event) Preview() mo.Option[string] {
	if !e.Recurrent || e.Schedule == nil {
		return mo.None[string]()
	}
	return schedule.PreviewRecord(*e.Schedule, e.Time)
}

// Occurrence is a single concrete instance of an event after recurrence
// expansion.
type Occurrence struct {
	EventID string `json:"event_id"`

	// InstanceKey uniquely identifies one occurrence of a recurring event;
	// it is the RFC 3339 local start.
	InstanceKey string `json:"instance_key"`

	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	Recurring   bool   `json:"recurring"`

	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
