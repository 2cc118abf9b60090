package engine

import "time"

// SessionType is one timer phase.
type SessionType int

const (
	Work SessionType = iota
	ShortBreak
	LongBreak
)

var sessionNames = map[SessionType]string{
	Work:       "work",
	ShortBreak: "shortBreak",
	LongBreak:  "longBreak",
}

var sessionLabels = map[SessionType]string{
	Work:       "WORK",
	ShortBreak: "SHORT BREAK",
	LongBreak:  "LONG BREAK",
}

func (s SessionType) String() string {
	if name, ok := sessionNames[s]; ok {
		return name
	}
	return "unknown"
}

// Label is the display name of the session.
func (s SessionType) Label() string {
	if label, ok := sessionLabels[s]; ok {
		return label
	}
	return "UNKNOWN"
}

// IsBreak reports whether s is a short or long break.
func (s SessionType) IsBreak() bool {
	return s == ShortBreak || s == LongBreak
}

// Mode is the activity mode derived from IsActive and IsPaused.
type Mode int

const (
	Idle Mode = iota
	Running
	Paused
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	default:
		return "unknown"
	}
}

// State is a snapshot of the timer.
type State struct {
	TimeLeft        int // seconds
	IsActive        bool
	IsPaused        bool
	CurrentSession  SessionType
	SessionCount    int
	LastSuspendedAt *time.Time
}

func (s State) Mode() Mode {
	switch {
	case !s.IsActive:
		return Idle
	case s.IsPaused:
		return Paused
	default:
		return Running
	}
}

// nextSession resolves the session that follows current. completed is the
// number of finished work sessions to test against the long break interval.
func nextSession(current SessionType, completed, interval int) SessionType {
	if current.IsBreak() {
		return Work
	}
	if interval <= 0 {
		interval = 1
	}
	if completed%interval == 0 {
		return LongBreak
	}
	return ShortBreak
}

func autoStarts(next SessionType, s Settings) bool {
	if next == Work {
		return s.AutoStartWork
	}
	return s.AutoStartBreaks
}
