package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventsched/internal/schedule"
)

func TestEvent_Start(t *testing.T) {
	loc := time.FixedZone("KST", 9*60*60)
	ev := Event{Date: "2025-09-21", Time: "15:30"}

	start, err := ev.Start(loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 9, 21, 15, 30, 0, 0, loc), start)

	_, err = Event{Date: "2025-09-21", Time: "3pm"}.Start(loc)
	assert.ErrorIs(t, err, schedule.ErrInvalidTime)

	_, err = Event{Date: "yesterday"}.Start(loc)
	assert.ErrorIs(t, err, schedule.ErrInvalidAnchorDate)
}

func TestEvent_Duration(t *testing.T) {
	assert.Equal(t, DefaultDuration, Event{}.Duration())
	assert.Equal(t, 90*time.Minute, Event{DurationMinutes: 90}.Duration())
}

func TestEvent_Preview(t *testing.T) {
	rec := &schedule.Record{Period: schedule.Weekly, Day: "Sunday"}

	assert.True(t, Event{Time: "15:00", Schedule: rec}.Preview().IsAbsent())

	got, ok := Event{Time: "15:00", Recurrent: true, Schedule: rec}.Preview().Get()
	assert.True(t, ok)
	assert.Equal(t, "Every Sunday at 3:00 PM", got)
}

func TestEvent_Rule(t *testing.T) {
	rule, err := Event{}.Rule()
	assert.NoError(t, err)
	assert.Nil(t, rule)

	rule, err = Event{Recurrent: true, Schedule: &schedule.Record{Period: schedule.Daily}}.Rule()
	require.NoError(t, err)
	assert.Equal(t, schedule.DailyRule{}, rule)
}
