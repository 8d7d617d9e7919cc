package ics

import (
	"errors"
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	appLog "eventsched/internal/log"
	"eventsched/internal/model"
	"eventsched/internal/schedule"
)

const (
	defaultMaxOccurrencesPerEvent = 5000
)

// ExpandConfig controls how recurrence expansion is performed.
type ExpandConfig struct {
	// Location is the zone event dates and times are interpreted in. If
	// nil, time.Local is used.
	Location *time.Location

	// RangeStart / RangeEnd define the inclusive time window for occurrences.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxOccurrencesPerEvent caps expansion of a single event. If zero,
	// defaultMaxOccurrencesPerEvent is used.
	MaxOccurrencesPerEvent int
}

// ExpandResult wraps the expanded occurrences, ordered by start.
type ExpandResult struct {
	Occurrences []model.Occurrence
	// TruncatedEvents records IDs that hit the MaxOccurrencesPerEvent cap.
	TruncatedEvents []string
	// InvalidEvents records IDs whose date, time or schedule did not parse.
	InvalidEvents []string
}

// ExpandOccurrences expands events into the occurrences that overlap the
// configured window. Recurring events honour their ExDates.
func ExpandOccurrences(events []model.Event, cfg ExpandConfig) (ExpandResult, error) {
	var result ExpandResult

	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return result, errors.New("expand: RangeEnd is before RangeStart")
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.MaxOccurrencesPerEvent <= 0 {
		cfg.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}

	all := make([]model.Occurrence, 0)
	for _, ev := range events {
		occ, hitCap, err := expandEvent(ev, cfg)
		if err != nil {
			appLog.Error("expand: skipping event", err, "id", ev.ID)
			result.InvalidEvents = append(result.InvalidEvents, ev.ID)
			continue
		}
		if hitCap {
			result.TruncatedEvents = append(result.TruncatedEvents, ev.ID)
			appLog.Warn("expand: truncated occurrences due to cap", "id", ev.ID, "cap", cfg.MaxOccurrencesPerEvent)
		}
		all = append(all, occ...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Start.Before(all[j].Start)
	})
	result.Occurrences = all
	return result, nil
}

func expandEvent(ev model.Event, cfg ExpandConfig) ([]model.Occurrence, bool, error) {
	start, err := ev.Start(cfg.Location)
	if err != nil {
		return nil, false, err
	}
	rule, err := ev.Rule()
	if err != nil {
		return nil, false, err
	}
	dur := ev.Duration()

	if rule == nil {
		if !timeRangesOverlap(start, start.Add(dur), cfg.RangeStart, cfg.RangeEnd) {
			return nil, false, nil
		}
		return []model.Occurrence{makeOccurrence(ev, start, dur, false)}, false, nil
	}

	r, err := schedule.NewRRule(rule, start)
	if err != nil {
		return nil, false, err
	}

	var set rrule.Set
	set.RRule(r)
	for _, d := range ev.ExDates {
		ex, err := exDateAt(d, start)
		if err != nil {
			appLog.Error("expand: bad exdate", err, "id", ev.ID, "exdate", d)
			continue
		}
		set.ExDate(ex)
	}

	// Occurrences that started before the window but are still running
	// overlap it.
	times := set.Between(cfg.RangeStart.Add(-dur), cfg.RangeEnd, true)

	hitCap := false
	if len(times) > cfg.MaxOccurrencesPerEvent {
		times = times[:cfg.MaxOccurrencesPerEvent]
		hitCap = true
	}

	out := make([]model.Occurrence, 0, len(times))
	for _, t := range times {
		if !timeRangesOverlap(t, t.Add(dur), cfg.RangeStart, cfg.RangeEnd) {
			continue
		}
		out = append(out, makeOccurrence(ev, t, dur, true))
	}
	return out, hitCap, nil
}

func makeOccurrence(ev model.Event, start time.Time, dur time.Duration, recurring bool) model.Occurrence {
	return model.Occurrence{
		EventID:     ev.ID,
		InstanceKey: start.Format(time.RFC3339),
		Title:       ev.Title,
		Description: ev.Description,
		Location:    ev.Location,
		Recurring:   recurring,
		Start:       start,
		End:         start.Add(dur),
	}
}

// timeRangesOverlap treats [aStart, aEnd) against the inclusive window.
func timeRangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	if !aEnd.After(bStart) {
		return false
	}
	if bEnd.Before(aStart) {
		return false
	}
	return true
}
