package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/samber/mo"

	"eventsched/internal/config"
	"eventsched/internal/events"
	"eventsched/internal/ics"
	appLog "eventsched/internal/log"
	"eventsched/internal/model"
	"eventsched/internal/remind"
	"eventsched/internal/schedule"
)

// stdout is swapped in tests.
var stdout io.Writer = os.Stdout

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ruleFlags are the recurrence selection inputs shared by several commands.
type ruleFlags struct {
	period      string
	day         string
	dateOfMonth int
	nth         string
	weekday     string
	month       int
}

func (r *ruleFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&r.period, "period", "", "daily, weekly, monthly or yearly")
	fs.StringVar(&r.day, "day", "", `weekday name, day of month or "<nth> <weekday>"`)
	fs.IntVar(&r.dateOfMonth, "date-of-month", 0, "day of month for monthly rules (1-31)")
	fs.StringVar(&r.nth, "nth", "", "1st-5th for monthly rules")
	fs.StringVar(&r.weekday, "weekday", "", "weekday for monthly nth rules")
	fs.IntVar(&r.month, "month", 0, "month for yearly rules (1-12)")
}

func (r ruleFlags) draft() schedule.Draft {
	d := schedule.Draft{
		Period:  schedule.Period(r.period),
		Day:     r.day,
		Nth:     r.nth,
		Weekday: r.weekday,
	}
	if r.dateOfMonth != 0 {
		d.DateOfMonth = mo.Some(r.dateOfMonth)
	}
	if r.month != 0 {
		d.Month = mo.Some(r.month)
	}
	return d
}

// eventFlags are the event form inputs of add and edit.
type eventFlags struct {
	id          string
	title       string
	description string
	location    string
	date        string
	clock       string
	duration    int
	recurrent   bool
	exdates     string
	rule        ruleFlags
}

func (e *eventFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&e.title, "title", "", "event title")
	fs.StringVar(&e.description, "description", "", "event description")
	fs.StringVar(&e.location, "location", "", "event location")
	fs.StringVar(&e.date, "date", "", "event date (YYYY-MM-DD)")
	fs.StringVar(&e.clock, "time", "", "start time (HH:MM)")
	fs.IntVar(&e.duration, "duration", 0, "duration in minutes")
	fs.BoolVar(&e.recurrent, "recurrent", false, "event repeats")
	fs.StringVar(&e.exdates, "exdates", "", "comma-separated dates to skip")
	e.rule.register(fs)
}

// apply copies the flags that were set on fs into f.
func (e eventFlags) apply(fs *flag.FlagSet, f *events.Form) {
	ruleSet := false
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "title":
			f.Title = e.title
		case "description":
			f.Description = e.description
		case "location":
			f.Location = e.location
		case "date":
			f.Date = e.date
		case "time":
			f.Time = e.clock
		case "duration":
			f.DurationMinutes = e.duration
		case "recurrent":
			f.Recurrent = e.recurrent
		case "exdates":
			f.ExDates = splitList(e.exdates)
		case "period", "day", "date-of-month", "nth", "weekday", "month":
			ruleSet = true
		}
	})
	if ruleSet {
		d := e.rule.draft()
		if d.Period == "" {
			d.Period = f.Schedule.Period
		}
		f.Schedule = d
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func printJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runPreview(_ context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("preview", flag.ContinueOnError)
	var rf ruleFlags
	rf.register(fs)
	date := fs.String("date", "", "anchor date (YYYY-MM-DD)")
	clock := fs.String("time", "", "start time (HH:MM)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	d := rf.draft()
	fmt.Fprintln(stdout, a.engine.Preview(d, *date, *clock).OrElse(schedule.NoRulePlaceholder))

	anchor, err := schedule.ParseAnchorDate(*date)
	if err != nil {
		return nil
	}
	rule, err := a.engine.Resolve(d, anchor)
	if err != nil {
		return nil
	}
	ev := model.Event{Date: *date, Time: *clock}
	start, err := ev.Start(a.conf.Location())
	if err != nil {
		return nil
	}

	fmt.Fprintf(stdout, "RRULE:%s\n", schedule.RRuleString(rule))
	next, err := schedule.Upcoming(rule, start, time.Now().In(a.conf.Location()), a.conf.UpcomingCount)
	if err != nil {
		return err
	}
	for _, t := range next {
		fmt.Fprintf(stdout, "  %s\n", t.Format("Mon 2006-01-02 15:04"))
	}
	return nil
}

func runNormalize(_ context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("normalize", flag.ContinueOnError)
	var rf ruleFlags
	rf.register(fs)
	date := fs.String("date", "", "anchor date (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rec, err := a.engine.Normalize(rf.draft(), *date)
	if err != nil {
		return err
	}
	return printJSON(rec)
}

func runDenormalize(_ context.Context, _ *app, args []string) error {
	fs := flag.NewFlagSet("denormalize", flag.ContinueOnError)
	period := fs.String("period", "", "stored period")
	day := fs.String("day", "", "stored day")
	month := fs.Int("month", 0, "stored month")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return printJSON(schedule.Denormalize(schedule.Record{
		Period: schedule.Period(*period),
		Day:    *day,
		Month:  *month,
	}))
}

func runAdd(_ context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	var ef eventFlags
	ef.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	var f events.Form
	ef.apply(fs, &f)
	ev, err := a.store.Submit(f)
	if err != nil {
		return err
	}
	printEvent(ev)
	return nil
}

func runEdit(_ context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	var ef eventFlags
	fs.StringVar(&ef.id, "id", "", "event ID")
	ef.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if ef.id == "" {
		return errors.New("edit: -id is required")
	}

	f, err := a.store.EditForm(ef.id)
	if err != nil {
		return err
	}
	ef.apply(fs, &f)
	ev, err := a.store.Submit(f)
	if err != nil {
		return err
	}
	printEvent(ev)
	return nil
}

func runList(_ context.Context, a *app, _ []string) error {
	for _, ev := range a.store.List() {
		printEvent(ev)
	}
	return nil
}

func printEvent(ev model.Event) {
	when := ev.Date
	if ev.Time != "" {
		when += " " + ev.Time
	}
	rule := "once"
	if ev.Recurrent {
		rule = ev.Preview().OrElse(schedule.NoRulePlaceholder)
	}
	fmt.Fprintf(stdout, "%s  %-16s  %s  (%s)\n", ev.ID, when, ev.Title, rule)
}

func runDelete(_ context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	id := fs.String("id", "", "event ID")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("delete: -id is required")
	}
	return a.store.Delete(*id)
}

func horizon(a *app, days int) ics.ExpandConfig {
	if days <= 0 {
		days = a.conf.HorizonDays
	}
	loc := a.conf.Location()
	now := time.Now().In(loc)
	return ics.ExpandConfig{
		Location:   loc,
		RangeStart: now,
		RangeEnd:   now.AddDate(0, 0, days),
	}
}

func runUpcoming(_ context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("upcoming", flag.ContinueOnError)
	days := fs.Int("days", 0, "days ahead (defaults to horizon_days)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	res, err := ics.ExpandOccurrences(a.store.List(), horizon(a, *days))
	if err != nil {
		return err
	}
	for _, occ := range res.Occurrences {
		fmt.Fprintf(stdout, "%s  %s\n", occ.Start.Format("Mon 2006-01-02 15:04"), occ.Title)
	}
	if len(res.InvalidEvents) > 0 {
		appLog.Warn("some events could not be expanded", "ids", strings.Join(res.InvalidEvents, ","))
	}
	return nil
}

func runExport(_ context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	out := fs.String("out", "", "output file (stdout if empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	body := ics.Export(a.store.List(), a.conf.Location())
	if *out == "" {
		_, err := io.WriteString(stdout, body)
		return err
	}
	return config.WriteFileAtomic(*out, []byte(body))
}

func runImport(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	file := fs.String("file", "", "ICS file to import")
	url := fs.String("url", "", "ICS feed URL to import")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var body []byte
	switch {
	case *file != "" && *url != "":
		return errors.New("import: use either -file or -url")
	case *file != "":
		b, err := os.ReadFile(*file)
		if err != nil {
			return err
		}
		body = b
	case *url != "":
		res, err := ics.NewFetcher(a.conf.CacheDir, nil).Fetch(ctx, *url)
		if err != nil {
			return err
		}
		body = res.Body
	default:
		return errors.New("import: -file or -url is required")
	}

	res, err := ics.ParseICS(body, a.conf.Location())
	if err != nil {
		return err
	}
	if err := a.store.Add(res.Events...); err != nil {
		return err
	}
	appLog.Info("ics import completed", "imported", len(res.Events), "skipped", len(res.Skipped))
	fmt.Fprintf(stdout, "imported %d events, skipped %d\n", len(res.Events), len(res.Skipped))
	return nil
}

func runWatch(ctx context.Context, a *app, _ []string) error {
	runner := remind.NewRunner(a.store, remind.LogNotifier{}, a.conf.Location(), a.conf.ReminderLead())
	return runner.Run(ctx, a.conf.RefreshCron)
}
