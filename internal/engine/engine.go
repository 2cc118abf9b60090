// Package engine implements the Pomodoro session state machine: countdown,
// session transitions, auto-start policy, background drift correction and
// daily statistics.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
)

const (
	tickInterval   = time.Second
	autoStartDelay = time.Second
)

// Notifier receives natural work-session completions when sound is enabled.
type Notifier interface {
	Notify(completed SessionType)
}

// Engine owns the timer state, the settings and the statistics collection.
// All mutation is serialised by mu. Store writes happen on the persister's
// goroutine, and queueing one never blocks while mu is held.
type Engine struct {
	mu sync.Mutex

	clock    Clock
	notifier Notifier
	logger   hclog.Logger
	loc      *time.Location

	settings Settings
	state    State
	stats    statsBook

	// settingsChanged records an UpdateSettings call, after which Load keeps
	// the in-memory settings. Statistics are not written until loaded is set,
	// so an early completion cannot overwrite stored history.
	settingsChanged bool
	loaded          bool

	// timer is the single pending tick or auto-start callback. gen is bumped
	// on every cancel so callbacks that lost a race with Stop are ignored.
	timer  Timer
	gen    uint64
	closed bool

	store   Store
	persist *persister
}

type Option func(*Engine)

func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

func WithLogger(l hclog.Logger) Option {
	return func(e *Engine) { e.logger = l.Named("engine") }
}

// WithLocation sets the zone used to derive calendar date keys.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithSettings sets the settings used until Load finds persisted ones.
func WithSettings(s Settings) Option {
	return func(e *Engine) { e.settings = s }
}

func New(store Store, opts ...Option) *Engine {
	e := &Engine{
		clock:    SystemClock,
		logger:   hclog.NewNullLogger(),
		loc:      time.Local,
		settings: DefaultSettings(),
		stats:    statsBook{},
		store:    store,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.state = State{
		CurrentSession: Work,
		TimeLeft:       e.settings.Duration(Work),
	}
	e.persist = newPersister(store, e.logger)
	return e
}

// Load reads persisted settings and statistics. Read failures and malformed
// payloads are logged and treated as absent. Completions recorded before Load
// returns are added to the loaded statistics, and settings changed before
// then win over persisted ones.
func (e *Engine) Load(ctx context.Context) {
	e.mu.Lock()
	base := e.settings
	e.mu.Unlock()

	settings, haveSettings := e.readSettings(ctx, base)
	stats := e.readStats(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()

	if haveSettings && !e.settingsChanged {
		e.settings = settings
		if !e.state.IsActive {
			e.state.TimeLeft = e.settings.Duration(e.state.CurrentSession)
		}
	}

	dirty := !e.loaded && len(e.stats) > 0
	if dirty {
		e.logger.Debug("merging completions recorded before load", "days", len(e.stats))
		stats.merge(e.stats)
	}
	cutoff := dateKey(e.today().AddDate(0, 0, -RetentionDays))
	if stats.prune(cutoff) {
		e.logger.Info("pruned old statistics", "cutoff", cutoff, "kept", len(stats))
		dirty = true
	}
	e.stats = stats
	e.loaded = true
	if dirty {
		e.saveStatsLocked()
	}
}

func (e *Engine) readSettings(ctx context.Context, base Settings) (Settings, bool) {
	payload, ok, err := e.store.Get(ctx, SettingsKey)
	if err != nil {
		e.logger.Error("load settings", "error", err)
		return base, false
	}
	if !ok {
		return base, false
	}
	s, err := decodeSettings(payload, base)
	if err != nil {
		e.logger.Warn("ignoring malformed settings", "error", err)
		return base, false
	}
	return s, true
}

func (e *Engine) readStats(ctx context.Context) statsBook {
	payload, ok, err := e.store.Get(ctx, StatsKey)
	if err != nil {
		e.logger.Error("load statistics", "error", err)
		return statsBook{}
	}
	if !ok {
		return statsBook{}
	}
	b, err := decodeStats(payload)
	if err != nil {
		e.logger.Warn("ignoring malformed statistics", "error", err)
		return statsBook{}
	}
	return b
}

// Start runs the countdown from idle or paused. No-op while running.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Mode() == Running {
		return
	}
	e.state.IsActive = true
	e.state.IsPaused = false
	e.armLocked()
	e.logger.Debug("started", "session", e.state.CurrentSession, "time_left", e.state.TimeLeft)
}

// Pause halts a running countdown. No-op otherwise.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Mode() != Running {
		return
	}
	e.cancelLocked()
	e.state.IsPaused = true
	e.state.LastSuspendedAt = nil
	e.logger.Debug("paused", "session", e.state.CurrentSession, "time_left", e.state.TimeLeft)
}

// Reset returns to idle with the full duration of the current session.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancelLocked()
	e.idleInLocked(e.state.CurrentSession)
	e.logger.Debug("reset", "session", e.state.CurrentSession)
}

// Skip moves to the session natural completion would pick, without counting
// the current one or recording statistics.
func (e *Engine) Skip() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancelLocked()
	from := e.state.CurrentSession
	next := nextSession(from, e.state.SessionCount+1, e.settings.LongBreakInterval)
	e.idleInLocked(next)
	e.logger.Debug("skipped", "from", from, "to", next)
}

// UpdateSettings merges p into the settings. An idle timer picks up the new
// duration immediately; an active one keeps its remaining time.
func (e *Engine) UpdateSettings(p SettingsPatch) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.settings = p.Apply(e.settings)
	e.settingsChanged = true
	if !e.state.IsActive {
		e.state.TimeLeft = e.settings.Duration(e.state.CurrentSession)
	}
	e.saveSettingsLocked()
}

func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.state
	if st.LastSuspendedAt != nil {
		at := *st.LastSuspendedAt
		st.LastSuspendedAt = &at
	}
	return st
}

func (e *Engine) Settings() Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

// TodayStats returns today's entry or a zero placeholder.
func (e *Engine) TodayStats() DailyStat {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats.get(dateKey(e.today()))
}

// WeekStats returns the last seven days ending today, oldest first.
func (e *Engine) WeekStats() []DailyStat {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats.week(e.today())
}

// Stats returns every retained entry ordered by date.
func (e *Engine) Stats() []DailyStat {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats.sorted()
}

// Flush waits until all queued writes have been attempted. It does not hold
// mu while waiting, so other calls proceed during a slow write.
func (e *Engine) Flush() {
	e.persist.flush()
}

// Close cancels any pending callback and drains queued writes.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.cancelLocked()
	e.closed = true
	e.mu.Unlock()

	e.persist.close()
	return nil
}

func (e *Engine) today() time.Time {
	return e.clock.Now().In(e.loc)
}

func (e *Engine) idleInLocked(session SessionType) {
	e.state.IsActive = false
	e.state.IsPaused = false
	e.state.LastSuspendedAt = nil
	e.state.CurrentSession = session
	e.state.TimeLeft = e.settings.Duration(session)
}

// armLocked schedules the next countdown evaluation. A timer already at zero
// is evaluated immediately so completion still goes through tick.
func (e *Engine) armLocked() {
	delay := tickInterval
	if e.state.TimeLeft <= 0 {
		delay = 0
	}
	e.scheduleLocked(delay, e.tick)
}

func (e *Engine) scheduleLocked(d time.Duration, fn func(gen uint64)) {
	e.cancelLocked()
	if e.closed {
		return
	}
	gen := e.gen
	e.timer = e.clock.AfterFunc(d, func() { fn(gen) })
}

func (e *Engine) cancelLocked() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.gen++
}

func (e *Engine) tick(gen uint64) {
	e.mu.Lock()
	if gen != e.gen || e.state.Mode() != Running {
		e.mu.Unlock()
		return
	}
	e.timer = nil

	if e.state.TimeLeft > 0 {
		e.state.TimeLeft--
	}

	var notify func()
	if e.state.TimeLeft == 0 {
		notify = e.completeLocked()
	} else {
		e.armLocked()
	}
	e.mu.Unlock()

	if notify != nil {
		notify()
	}
}

// completeLocked handles natural completion and returns the notification to
// run once mu is released.
func (e *Engine) completeLocked() func() {
	completed := e.state.CurrentSession
	count := e.state.SessionCount

	var notify func()
	if completed == Work {
		e.recordCompletionLocked(e.settings.WorkDuration)
		e.state.SessionCount++
		if e.settings.SoundEnabled && e.notifier != nil {
			n := e.notifier
			notify = func() { n.Notify(completed) }
		}
	}

	next := nextSession(completed, count+1, e.settings.LongBreakInterval)
	e.cancelLocked()
	e.idleInLocked(next)
	e.logger.Info("session complete", "completed", completed, "next", next, "session_count", e.state.SessionCount)

	if autoStarts(next, e.settings) {
		e.scheduleLocked(autoStartDelay, e.autoStart)
	}
	return notify
}

func (e *Engine) autoStart(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.gen || e.state.IsActive {
		return
	}
	e.state.IsActive = true
	e.state.IsPaused = false
	e.armLocked()
	e.logger.Debug("auto-started", "session", e.state.CurrentSession)
}

func (e *Engine) recordCompletionLocked(seconds int) {
	st := e.stats.record(dateKey(e.today()), seconds)
	e.logger.Debug("recorded completion", "date", st.Date, "sessions", st.CompletedSessions, "focus", st.TotalFocusTime)
	e.saveStatsLocked()
}

func (e *Engine) saveStatsLocked() {
	if !e.loaded {
		return
	}
	payload, err := encodeStats(e.stats)
	if err != nil {
		e.logger.Error("encode statistics", "error", err)
		return
	}
	e.enqueueLocked(StatsKey, payload)
}

func (e *Engine) saveSettingsLocked() {
	payload, err := encodeSettings(e.settings)
	if err != nil {
		e.logger.Error("encode settings", "error", err)
		return
	}
	e.enqueueLocked(SettingsKey, payload)
}

func (e *Engine) enqueueLocked(key, value string) {
	if e.closed {
		e.logger.Warn("dropping write after close", "key", key)
		return
	}
	e.persist.enqueue(key, value)
}
