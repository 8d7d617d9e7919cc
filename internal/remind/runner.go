package remind

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	appLog "eventsched/internal/log"
	"eventsched/internal/model"
)

// Reminder is sent once per upcoming occurrence.
type Reminder struct {
	Event      model.Event
	Occurrence time.Time
	// Rule is the human-readable recurrence, empty for one-off events.
	Rule string
}

// Notifier delivers reminders.
type Notifier interface {
	Notify(ctx context.Context, r Reminder) error
}

// LogNotifier writes reminders to the application log.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, r Reminder) error {
	appLog.Info("reminder",
		"event_id", r.Event.ID,
		"title", r.Event.Title,
		"at", r.Occurrence.Format(time.RFC3339),
		"rule", r.Rule,
	)
	return nil
}

// Source provides the events to remind about.
type Source interface {
	List() []model.Event
	Reload() error
}

// Runner keeps one cron entry per event that still has a future
// occurrence.
type Runner struct {
	source   Source
	notifier Notifier
	loc      *time.Location
	lead     time.Duration
	cron     *cron.Cron
	now      func() time.Time

	mu      sync.Mutex
	entries []cron.EntryID
}

// NewRunner builds a Runner. Event dates and times are read in loc and
// reminders fire lead before each occurrence.
func NewRunner(src Source, n Notifier, loc *time.Location, lead time.Duration) *Runner {
	if loc == nil {
		loc = time.Local
	}
	logger := appLog.CronLogger{}
	return &Runner{
		source:   src,
		notifier: n,
		loc:      loc,
		lead:     lead,
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger)),
		),
		now: time.Now,
	}
}

// Sync replaces the registered reminders with the source's current events
// and returns how many were scheduled.
func (r *Runner) Sync(ctx context.Context) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range r.entries {
		r.cron.Remove(id)
	}
	r.entries = r.entries[:0]

	now := r.now()
	for _, ev := range r.source.List() {
		sched, err := ScheduleFor(ev, r.loc, r.lead)
		if err != nil {
			appLog.Error("remind: skipping event", err, "id", ev.ID)
			continue
		}
		if sched.Next(now).IsZero() {
			continue
		}
		id := r.cron.Schedule(sched, cron.FuncJob(func() {
			r.fire(ctx, ev, r.now().Add(r.lead).Round(time.Minute))
		}))
		r.entries = append(r.entries, id)
	}

	appLog.Info("reminders scheduled", "count", len(r.entries), "lead", r.lead.String())
	return len(r.entries)
}

func (r *Runner) fire(ctx context.Context, ev model.Event, at time.Time) {
	rem := Reminder{
		Event:      ev,
		Occurrence: at.In(r.loc),
		Rule:       ev.Preview().OrEmpty(),
	}
	if err := r.notifier.Notify(ctx, rem); err != nil {
		appLog.Error("remind: notify failed", err, "id", ev.ID)
	}
}

// Run schedules reminders, reloads the source on refreshSpec and blocks
// until ctx is cancelled.
func (r *Runner) Run(ctx context.Context, refreshSpec string) error {
	_, err := r.cron.AddFunc(refreshSpec, func() {
		if err := r.source.Reload(); err != nil {
			appLog.Error("remind: reload failed", err)
			return
		}
		r.Sync(ctx)
	})
	if err != nil {
		return err
	}

	r.Sync(ctx)
	r.cron.Start()
	appLog.Info("reminder runner started", "refresh", refreshSpec, "timezone", r.loc.String())

	<-ctx.Done()

	stopped := r.cron.Stop()
	<-stopped.Done()
	appLog.Info("reminder runner stopped")
	return nil
}

// Next reports the next reminder time of every registered event.
func (r *Runner) Next() []time.Time {
	out := make([]time.Time, 0)
	r.mu.Lock()
	ids := append([]cron.EntryID(nil), r.entries...)
	r.mu.Unlock()

	now := r.now()
	for _, id := range ids {
		e := r.cron.Entry(id)
		if !e.Valid() {
			continue
		}
		out = append(out, e.Schedule.Next(now))
	}
	return out
}
