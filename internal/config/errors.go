package config

import "errors"

var (
	ErrInvalidWorkDuration       = errors.New("pomodoro.work_duration must be at least one minute")
	ErrInvalidShortBreakDuration = errors.New("pomodoro.short_break must be at least one minute")
	ErrInvalidLongBreakDuration  = errors.New("pomodoro.long_break must be at least one minute")
	ErrInvalidLongBreakInterval  = errors.New("pomodoro.long_break_after must be positive")
	ErrInvalidLogLevel           = errors.New("log.level is not a known level")
	ErrInvalidTimezone           = errors.New("timezone is not a known location")
)
