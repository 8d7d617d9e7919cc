package log

import "github.com/robfig/cron/v3"

// CronLogger routes cron's scheduler chatter through this package. Routine
// scheduling messages go to DEBUG.
type CronLogger struct{}

var _ cron.Logger = CronLogger{}

func (CronLogger) Info(msg string, keysAndValues ...any) {
	Debug("cron: "+msg, keysAndValues...)
}

func (CronLogger) Error(err error, msg string, keysAndValues ...any) {
	Error("cron: "+msg, err, keysAndValues...)
}
