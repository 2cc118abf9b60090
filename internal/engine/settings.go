package engine

import "encoding/json"

const (
	// MinDuration is the shortest session length the settings helpers allow.
	MinDuration = 60

	// SettingsKey is the store key holding the settings payload.
	SettingsKey = "pomodoro_settings"
)

// Settings are the user-tunable session parameters. Durations are seconds.
type Settings struct {
	WorkDuration       int  `json:"workDuration"`
	ShortBreakDuration int  `json:"shortBreakDuration"`
	LongBreakDuration  int  `json:"longBreakDuration"`
	LongBreakInterval  int  `json:"longBreakInterval"`
	AutoStartBreaks    bool `json:"autoStartBreaks"`
	AutoStartWork      bool `json:"autoStartWork"`
	SoundEnabled       bool `json:"soundEnabled"`
}

func DefaultSettings() Settings {
	return Settings{
		WorkDuration:       25 * 60,
		ShortBreakDuration: 5 * 60,
		LongBreakDuration:  15 * 60,
		LongBreakInterval:  4,
		AutoStartBreaks:    true,
		AutoStartWork:      true,
		SoundEnabled:       true,
	}
}

// Duration returns the configured length of session s in seconds.
func (s Settings) Duration(session SessionType) int {
	switch session {
	case ShortBreak:
		return s.ShortBreakDuration
	case LongBreak:
		return s.LongBreakDuration
	default:
		return s.WorkDuration
	}
}

// SettingsPatch is a partial settings update; nil fields are left alone.
type SettingsPatch struct {
	WorkDuration       *int
	ShortBreakDuration *int
	LongBreakDuration  *int
	LongBreakInterval  *int
	AutoStartBreaks    *bool
	AutoStartWork      *bool
	SoundEnabled       *bool
}

func (p SettingsPatch) Apply(s Settings) Settings {
	if p.WorkDuration != nil {
		s.WorkDuration = *p.WorkDuration
	}
	if p.ShortBreakDuration != nil {
		s.ShortBreakDuration = *p.ShortBreakDuration
	}
	if p.LongBreakDuration != nil {
		s.LongBreakDuration = *p.LongBreakDuration
	}
	if p.LongBreakInterval != nil {
		s.LongBreakInterval = *p.LongBreakInterval
	}
	if p.AutoStartBreaks != nil {
		s.AutoStartBreaks = *p.AutoStartBreaks
	}
	if p.AutoStartWork != nil {
		s.AutoStartWork = *p.AutoStartWork
	}
	if p.SoundEnabled != nil {
		s.SoundEnabled = *p.SoundEnabled
	}
	return s
}

// ClampDuration raises seconds to MinDuration.
func ClampDuration(seconds int) int {
	if seconds < MinDuration {
		return MinDuration
	}
	return seconds
}

// StepDuration moves current by whole minutes, never below MinDuration.
func StepDuration(current, minutes int) int {
	return ClampDuration(current + minutes*60)
}

// ClampInterval keeps the long break interval at one or more.
func ClampInterval(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// Int and Bool build SettingsPatch fields inline.
func Int(v int) *int    { return &v }
func Bool(v bool) *bool { return &v }

func encodeSettings(s Settings) (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// decodeSettings overlays the stored payload on base so that fields missing
// from older payloads keep their defaults.
func decodeSettings(payload string, base Settings) (Settings, error) {
	s := base
	if err := json.Unmarshal([]byte(payload), &s); err != nil {
		return base, err
	}
	return s, nil
}
