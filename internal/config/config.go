package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	appLog "eventsched/internal/log"
)

const (
	defaultTimezone      = "UTC"
	defaultEventsFile    = "./events.yaml"
	defaultCacheDir      = "./var/ics-cache"
	defaultHorizonDays   = 30
	defaultUpcomingCount = 5
	defaultReminderLead  = 15
	defaultRefreshCron   = "*/5 * * * *"
	defaultLogLevel      = "info"
)

// Config is the top-level application configuration.
type Config struct {
	// Timezone is the IANA zone event dates and times are interpreted in.
	Timezone string `yaml:"timezone" json:"timezone"`

	// EventsFile is the YAML file events are stored in.
	EventsFile string `yaml:"events_file" json:"events_file"`

	// CacheDir holds the HTTP cache for imported ICS feeds.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	// StrictMonthly rejects monthly rules that name neither a date of month
	// nor an nth weekday instead of deriving one from the event date.
	StrictMonthly bool `yaml:"strict_monthly" json:"strict_monthly"`

	// HorizonDays is how far ahead `upcoming` and `export` look.
	HorizonDays int `yaml:"horizon_days" json:"horizon_days"`

	// UpcomingCount is how many next occurrences `preview` lists.
	UpcomingCount int `yaml:"upcoming_count" json:"upcoming_count"`

	// ReminderLeadMinutes is how long before an occurrence reminders fire.
	ReminderLeadMinutes int `yaml:"reminder_lead_minutes" json:"reminder_lead_minutes"`

	// RefreshCron is a standard 5-field cron spec on which `watch` reloads
	// the events file.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	LogLevel string `yaml:"log_level" json:"log_level"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Timezone:            defaultTimezone,
		EventsFile:          defaultEventsFile,
		CacheDir:            defaultCacheDir,
		StrictMonthly:       false,
		HorizonDays:         defaultHorizonDays,
		UpcomingCount:       defaultUpcomingCount,
		ReminderLeadMinutes: defaultReminderLead,
		RefreshCron:         defaultRefreshCron,
		LogLevel:            defaultLogLevel,
	}
}

// Normalize fills in missing or invalid values with defaults so that
// partially-filled configs still behave.
func (c *Config) Normalize() {
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		appLog.Error("unknown timezone; using default", err, "timezone", c.Timezone)
		c.Timezone = defaultTimezone
	}
	if c.EventsFile == "" {
		c.EventsFile = defaultEventsFile
	}
	if c.CacheDir == "" {
		c.CacheDir = defaultCacheDir
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = defaultHorizonDays
	}
	if c.UpcomingCount <= 0 {
		c.UpcomingCount = defaultUpcomingCount
	}
	if c.ReminderLeadMinutes < 0 {
		c.ReminderLeadMinutes = 0
	}
	if c.RefreshCron == "" {
		c.RefreshCron = defaultRefreshCron
	}
	if _, err := cron.ParseStandard(c.RefreshCron); err != nil {
		appLog.Error("invalid refresh spec; using default", err, "refresh", c.RefreshCron)
		c.RefreshCron = defaultRefreshCron
	}
	if _, ok := appLog.ParseLevel(c.LogLevel); !ok {
		c.LogLevel = defaultLogLevel
	}
}

// Location returns the configured timezone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ReminderLead returns ReminderLeadMinutes as a duration.
func (c *Config) ReminderLead() time.Duration {
	return time.Duration(c.ReminderLeadMinutes) * time.Minute
}

// Load loads configuration from the given YAML path.
//
// A missing file is created with defaults (0600) on first run.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path atomically with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, data)
}

// WriteFileAtomic writes data to a temp file next to path and renames it
// over path. Parent directories are created with 0700.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
