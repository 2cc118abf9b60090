// Package app wires configuration, logging, storage, the engine and the
// notifier into a running application.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"github.com/sadopc/bbomodoro/internal/config"
	"github.com/sadopc/bbomodoro/internal/engine"
	"github.com/sadopc/bbomodoro/internal/sound"
	"github.com/sadopc/bbomodoro/internal/store"
)

type Options struct {
	// ConfigPath overrides the default config.yaml location.
	ConfigPath string
	// LogOutput overrides the configured log file.
	LogOutput io.Writer
	// Mute disables the completion tone regardless of settings.
	Mute bool
}

type App struct {
	Config *config.Config
	Logger hclog.Logger
	Store  *store.Store
	Engine *engine.Engine

	logFile *os.File
}

func New(ctx context.Context, opts Options) (*App, error) {
	cfgPath := opts.ConfigPath
	if cfgPath == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("resolve config path: %w", err)
		}
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg}

	out := opts.LogOutput
	if out == nil {
		logPath, err := cfg.LogPath()
		if err != nil {
			return nil, fmt.Errorf("resolve log path: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		a.logFile = f
		out = f
	}
	a.Logger = hclog.New(&hclog.LoggerOptions{
		Name:   "bbomodoro",
		Level:  hclog.LevelFromString(cfg.Log.Level),
		Output: out,
	})

	dbPath := cfg.Database.Path
	if dbPath == "" {
		if dbPath, err = store.DefaultDBPath(); err != nil {
			a.Close()
			return nil, fmt.Errorf("resolve database path: %w", err)
		}
	}
	a.Store, err = store.New(dbPath, store.WithLogger(a.Logger))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}
	a.Logger.Debug("opened store", "path", dbPath)

	engineOpts := []engine.Option{
		engine.WithLogger(a.Logger),
		engine.WithLocation(loc),
		engine.WithSettings(cfg.Settings()),
	}
	if !opts.Mute {
		engineOpts = append(engineOpts, engine.WithNotifier(sound.NewPlayer(a.Logger)))
	}
	a.Engine = engine.New(a.Store, engineOpts...)
	a.Engine.Load(ctx)

	return a, nil
}

// Close drains pending writes before closing the database.
func (a *App) Close() error {
	var firstErr error
	if a.Engine != nil {
		if err := a.Engine.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
