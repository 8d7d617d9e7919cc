// Package events keeps dashboard events in a YAML file and applies the
// schedule engine on the form submit and edit-open paths.
package events

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"eventsched/internal/config"
	appLog "eventsched/internal/log"
	"eventsched/internal/model"
	"eventsched/internal/schedule"
)

var (
	ErrNotFound     = errors.New("events: event not found")
	ErrMissingTitle = errors.New("events: title is required")
)

// Form is what the event create/edit form submits.
type Form struct {
	ID              string
	Title           string
	Description     string
	Location        string
	Date            string
	Time            string
	DurationMinutes int
	Recurrent       bool
	Schedule        schedule.Draft
	ExDates         []string
}

type fileData struct {
	Events []model.Event `yaml:"events"`
}

// Store is a file-backed event collection. It is safe for concurrent use.
type Store struct {
	path   string
	engine schedule.Engine

	mu     sync.RWMutex
	events []model.Event
}

// Open loads the store at path. A missing file is an empty store.
func Open(path string, engine schedule.Engine) (*Store, error) {
	if path == "" {
		return nil, errors.New("events: path is empty")
	}
	s := &Store{path: path, engine: engine}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the events file.
func (s *Store) Reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	var fd fileData
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &fd); err != nil {
			return fmt.Errorf("events: parse %s: %w", s.path, err)
		}
	}

	s.mu.Lock()
	s.events = fd.Events
	s.mu.Unlock()

	appLog.Debug("events loaded", "path", s.path, "count", len(fd.Events))
	return nil
}

// List returns all events ordered by date and time.
func (s *Store) List() []model.Event {
	s.mu.RLock()
	out := make([]model.Event, len(s.events))
	copy(out, s.events)
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	return out
}

func (s *Store) Get(id string) (model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.events[i], nil
	}
	return model.Event{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Submit validates f, normalizes its schedule against its date and stores
// the event, creating it when f.ID is empty or unknown.
func (s *Store) Submit(f Form) (model.Event, error) {
	ev, err := s.build(f)
	if err != nil {
		return model.Event{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]model.Event, len(s.events), len(s.events)+1)
	copy(next, s.events)
	if i := s.indexOf(ev.ID); i >= 0 {
		next[i] = ev
	} else {
		next = append(next, ev)
	}

	if err := s.save(next); err != nil {
		return model.Event{}, err
	}
	s.events = next

	appLog.Info("event saved", "id", ev.ID, "title", ev.Title, "recurrent", ev.Recurrent)
	return ev, nil
}

// Add stores an already-built event, e.g. one read from an ICS feed. An
// event with an ID already present replaces the old one.
func (s *Store) Add(evs ...model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]model.Event, len(s.events), len(s.events)+len(evs))
	copy(next, s.events)
	for _, ev := range evs {
		if ev.ID == "" {
			ev.ID = uuid.NewString()
		}
		found := false
		for i := range next {
			if next[i].ID == ev.ID {
				next[i] = ev
				found = true
				break
			}
		}
		if !found {
			next = append(next, ev)
		}
	}

	if err := s.save(next); err != nil {
		return err
	}
	s.events = next
	return nil
}

// EditForm rebuilds the form for an existing event, turning its stored
// schedule back into an editable draft.
func (s *Store) EditForm(id string) (Form, error) {
	ev, err := s.Get(id)
	if err != nil {
		return Form{}, err
	}

	f := Form{
		ID:              ev.ID,
		Title:           ev.Title,
		Description:     ev.Description,
		Location:        ev.Location,
		Date:            ev.Date,
		Time:            ev.Time,
		DurationMinutes: ev.DurationMinutes,
		Recurrent:       ev.Recurrent,
		ExDates:         append([]string(nil), ev.ExDates...),
	}
	if ev.Schedule != nil {
		f.Schedule = schedule.Denormalize(*ev.Schedule)
	}
	return f, nil
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	next := make([]model.Event, 0, len(s.events)-1)
	next = append(next, s.events[:i]...)
	next = append(next, s.events[i+1:]...)

	if err := s.save(next); err != nil {
		return err
	}
	s.events = next

	appLog.Info("event deleted", "id", id)
	return nil
}

func (s *Store) build(f Form) (model.Event, error) {
	title := strings.TrimSpace(f.Title)
	if title == "" {
		return model.Event{}, ErrMissingTitle
	}
	anchor, err := schedule.ParseAnchorDate(f.Date)
	if err != nil {
		return model.Event{}, err
	}
	if f.Time != "" {
		if _, _, err := schedule.ParseClock(f.Time); err != nil {
			return model.Event{}, err
		}
	}

	ev := model.Event{
		ID:              f.ID,
		Title:           title,
		Description:     f.Description,
		Location:        f.Location,
		Date:            anchor.Format("2006-01-02"),
		Time:            f.Time,
		DurationMinutes: f.DurationMinutes,
		Recurrent:       f.Recurrent,
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}

	if f.Recurrent {
		rec, err := s.engine.Normalize(f.Schedule, ev.Date)
		if err != nil {
			return model.Event{}, err
		}
		ev.Schedule = &rec

		for _, d := range f.ExDates {
			exd, err := schedule.ParseAnchorDate(d)
			if err != nil {
				return model.Event{}, err
			}
			ev.ExDates = append(ev.ExDates, exd.Format("2006-01-02"))
		}
	}
	return ev, nil
}

// indexOf must be called with s.mu held.
func (s *Store) indexOf(id string) int {
	for i := range s.events {
		if s.events[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) save(evs []model.Event) error {
	data, err := yaml.Marshal(fileData{Events: evs})
	if err != nil {
		return err
	}
	return config.WriteFileAtomic(s.path, data)
}
