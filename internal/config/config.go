// Package config reads and writes the YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"
	"gopkg.in/yaml.v3"

	"github.com/sadopc/bbomodoro/internal/engine"
)

const appDir = "bbomodoro"

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Timezone string         `yaml:"timezone"`
	Pomodoro PomodoroConfig `yaml:"pomodoro"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// PomodoroConfig seeds the engine settings until the user saves their own.
type PomodoroConfig struct {
	WorkDuration   time.Duration `yaml:"work_duration"`
	ShortBreak     time.Duration `yaml:"short_break"`
	LongBreak      time.Duration `yaml:"long_break"`
	LongBreakAfter int           `yaml:"long_break_after"`
	AutoStartBreak bool          `yaml:"auto_start_break"`
	AutoStartWork  bool          `yaml:"auto_start_work"`
	Sound          bool          `yaml:"sound"`
}

// DefaultConfig returns the configuration written on first run. Empty paths
// resolve to files under the user config directory.
func DefaultConfig() *Config {
	d := engine.DefaultSettings()
	return &Config{
		Log:      LogConfig{Level: "info"},
		Timezone: "Local",
		Pomodoro: PomodoroConfig{
			WorkDuration:   time.Duration(d.WorkDuration) * time.Second,
			ShortBreak:     time.Duration(d.ShortBreakDuration) * time.Second,
			LongBreak:      time.Duration(d.LongBreakDuration) * time.Second,
			LongBreakAfter: d.LongBreakInterval,
			AutoStartBreak: d.AutoStartBreaks,
			AutoStartWork:  d.AutoStartWork,
			Sound:          d.SoundEnabled,
		},
	}
}

// Dir returns <user config dir>/bbomodoro.
func Dir() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, appDir), nil
}

// DefaultPath returns the location of config.yaml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the file at path. A missing file is created with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg := DefaultConfig()
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	p := c.Pomodoro
	switch {
	case p.WorkDuration < time.Minute:
		return ErrInvalidWorkDuration
	case p.ShortBreak < time.Minute:
		return ErrInvalidShortBreakDuration
	case p.LongBreak < time.Minute:
		return ErrInvalidLongBreakDuration
	case p.LongBreakAfter < 1:
		return ErrInvalidLongBreakInterval
	}
	if c.Log.Level != "" && hclog.LevelFromString(c.Log.Level) == hclog.NoLevel {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Log.Level)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the timezone used to key daily statistics.
func (c *Config) Location() (*time.Location, error) {
	switch c.Timezone {
	case "", "Local":
		return time.Local, nil
	case "UTC":
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimezone, c.Timezone)
	}
	return loc, nil
}

// Settings converts the pomodoro block into engine settings.
func (c *Config) Settings() engine.Settings {
	p := c.Pomodoro
	return engine.Settings{
		WorkDuration:       engine.ClampDuration(int(p.WorkDuration / time.Second)),
		ShortBreakDuration: engine.ClampDuration(int(p.ShortBreak / time.Second)),
		LongBreakDuration:  engine.ClampDuration(int(p.LongBreak / time.Second)),
		LongBreakInterval:  engine.ClampInterval(p.LongBreakAfter),
		AutoStartBreaks:    p.AutoStartBreak,
		AutoStartWork:      p.AutoStartWork,
		SoundEnabled:       p.Sound,
	}
}

// LogPath returns the configured log file or the default one.
func (c *Config) LogPath() (string, error) {
	if c.Log.File != "" {
		return c.Log.File, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "bbomodoro.log"), nil
}
