package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_CreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoad_NormalizesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "timezone: Asia/Seoul\nstrict_monthly: true\nrefresh: \"not a cron\"\nhorizon_days: -3\nlog_level: loud\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Asia/Seoul", cfg.Timezone)
	assert.True(t, cfg.StrictMonthly)
	assert.Equal(t, defaultRefreshCron, cfg.RefreshCron)
	assert.Equal(t, defaultHorizonDays, cfg.HorizonDays)
	assert.Equal(t, defaultLogLevel, cfg.LogLevel)
	assert.Equal(t, defaultEventsFile, cfg.EventsFile)
	assert.Equal(t, "Asia/Seoul", cfg.Location().String())
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timezone: [unterminated"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestNormalize_UnknownTimezone(t *testing.T) {
	cfg := &Config{Timezone: "Mars/Olympus"}
	cfg.Normalize()
	assert.Equal(t, defaultTimezone, cfg.Timezone)
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.ReminderLeadMinutes = 45
	cfg.RefreshCron = "0 * * * *"

	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 45*time.Minute, got.ReminderLead())
	assert.Equal(t, "0 * * * *", got.RefreshCron)
}

func TestSave_Errors(t *testing.T) {
	assert.Error(t, Save("", DefaultConfig()))
	assert.Error(t, Save(filepath.Join(t.TempDir(), "c.yaml"), nil))
}
