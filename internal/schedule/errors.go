package schedule

import "errors"

var (
	// ErrInvalidAnchorDate is returned when the event date cannot be parsed.
	ErrInvalidAnchorDate = errors.New("schedule: invalid anchor date")
	// ErrInvalidTime is returned when a time of day is not HH:MM.
	ErrInvalidTime = errors.New("schedule: invalid time of day")

	ErrMissingPeriod = errors.New("schedule: period is required")
	ErrUnknownPeriod = errors.New("schedule: unknown period")
	ErrInvalidDay    = errors.New("schedule: invalid day")
	ErrInvalidMonth  = errors.New("schedule: invalid month")

	// ErrIncompleteMonthlyRule is only returned by an Engine with
	// StrictMonthly set; otherwise the rule is derived from the anchor date.
	ErrIncompleteMonthlyRule = errors.New("schedule: monthly rule needs a date of month or an nth weekday")

	// ErrUnsupportedRule is returned when an RRULE has no equivalent record.
	ErrUnsupportedRule = errors.New("schedule: unsupported recurrence rule")
)
