package remind

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventsched/internal/model"
	"eventsched/internal/schedule"
)

type fakeSource struct {
	events  []model.Event
	reloads int
}

func (s *fakeSource) List() []model.Event { return s.events }
func (s *fakeSource) Reload() error {
	s.reloads++
	return nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	got  []Reminder
	fail bool
}

func (n *recordingNotifier) Notify(_ context.Context, r Reminder) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.got = append(n.got, r)
	if n.fail {
		return errors.New("delivery failed")
	}
	return nil
}

func weekly() model.Event {
	return model.Event{
		ID:        "w",
		Title:     "Choir",
		Date:      "2025-09-21",
		Time:      "15:00",
		Recurrent: true,
		Schedule:  &schedule.Record{Period: schedule.Weekly, Day: "Sunday"},
	}
}

func TestScheduleFor_Recurring(t *testing.T) {
	s, err := ScheduleFor(weekly(), time.UTC, 15*time.Minute)
	require.NoError(t, err)

	// Before the first occurrence.
	got := s.Next(time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, 9, 21, 14, 45, 0, 0, time.UTC), got)

	// Inside the lead window the next reminder belongs to the next week.
	got = s.Next(time.Date(2025, 9, 21, 14, 50, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, 9, 28, 14, 45, 0, 0, time.UTC), got)
}

func TestScheduleFor_OneOff(t *testing.T) {
	ev := model.Event{ID: "o", Title: "AGM", Date: "2025-11-02", Time: "18:00"}
	s, err := ScheduleFor(ev, time.UTC, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 11, 2, 17, 0, 0, 0, time.UTC), s.Next(time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, s.Next(time.Date(2025, 11, 2, 17, 0, 0, 0, time.UTC)).IsZero())
}

func TestScheduleFor_Invalid(t *testing.T) {
	_, err := ScheduleFor(model.Event{Date: "never"}, time.UTC, 0)
	assert.ErrorIs(t, err, schedule.ErrInvalidAnchorDate)

	_, err = ScheduleFor(model.Event{Date: "2025-01-01", Recurrent: true, Schedule: &schedule.Record{Period: schedule.Weekly, Day: "x"}}, time.UTC, 0)
	assert.ErrorIs(t, err, schedule.ErrInvalidDay)
}

func TestRunner_Sync(t *testing.T) {
	src := &fakeSource{events: []model.Event{
		weekly(),
		{ID: "past", Title: "Old", Date: "2020-01-01", Time: "10:00"},
		{ID: "bad", Title: "Bad", Date: "nope"},
		{ID: "future", Title: "Gala", Date: "2025-12-24", Time: "19:00"},
	}}
	r := NewRunner(src, &recordingNotifier{}, time.UTC, 10*time.Minute)
	r.now = func() time.Time { return time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC) }

	assert.Equal(t, 2, r.Sync(context.Background()))
	assert.ElementsMatch(t, []time.Time{
		time.Date(2025, 9, 21, 14, 50, 0, 0, time.UTC),
		time.Date(2025, 12, 24, 18, 50, 0, 0, time.UTC),
	}, r.Next())

	// Sync replaces rather than accumulates.
	src.events = src.events[:1]
	assert.Equal(t, 1, r.Sync(context.Background()))
	assert.Len(t, r.Next(), 1)
}

func TestRunner_Fire(t *testing.T) {
	n := &recordingNotifier{fail: true}
	r := NewRunner(&fakeSource{}, n, time.UTC, 0)

	at := time.Date(2025, 9, 21, 15, 0, 0, 0, time.UTC)
	r.fire(context.Background(), weekly(), at)

	require.Len(t, n.got, 1)
	assert.Equal(t, "w", n.got[0].Event.ID)
	assert.Equal(t, at, n.got[0].Occurrence)
	assert.Equal(t, "Every Sunday at 3:00 PM", n.got[0].Rule)
}

func TestRunner_RunStopsOnCancel(t *testing.T) {
	src := &fakeSource{events: []model.Event{weekly()}}
	r := NewRunner(src, LogNotifier{}, time.UTC, 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx, "*/5 * * * *") }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not stop")
	}

	assert.Error(t, NewRunner(src, LogNotifier{}, time.UTC, 0).Run(context.Background(), "bogus"))
}
