package engine

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakeClock fires scheduled callbacks only when Advance moves time past them.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	pending := !t.stopped && !t.fired
	t.stopped = true
	return pending
}

// Advance moves the clock forward by d, running due callbacks in order.
// Callbacks run without the clock lock held so they may schedule more.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	end := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var next *fakeTimer
		for _, t := range c.timers {
			if t.stopped || t.fired || t.at.After(end) {
				continue
			}
			if next == nil || t.at.Before(next.at) {
				next = t
			}
		}
		if next == nil {
			c.now = end
			c.mu.Unlock()
			return
		}
		if next.at.After(c.now) {
			c.now = next.at
		}
		next.fired = true
		c.mu.Unlock()

		next.f()
	}
}

// Set jumps the wall clock without firing anything, like a suspended process.
func (c *fakeClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *fakeClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// memStore is a synchronous in-memory Store.
type memStore struct {
	mu   sync.Mutex
	data map[string]string
	sets int
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]string)}
}

func (m *memStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.sets++
	return nil
}

func (m *memStore) value(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []SessionType
}

func (n *recordingNotifier) Notify(completed SessionType) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, completed)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

var testNow = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

func manualSettings() Settings {
	s := DefaultSettings()
	s.AutoStartBreaks = false
	s.AutoStartWork = false
	return s
}

func newTestEngine(t *testing.T, settings Settings, opts ...Option) (*Engine, *fakeClock, *memStore) {
	t.Helper()
	clk := newFakeClock(testNow)
	st := newMemStore()
	opts = append([]Option{
		WithClock(clk),
		WithLocation(time.UTC),
		WithSettings(settings),
	}, opts...)
	e := New(st, opts...)
	t.Cleanup(func() { e.Close() })
	e.Load(context.Background())
	return e, clk, st
}

// finishSession runs the current session to natural completion.
func finishSession(e *Engine, clk *fakeClock) {
	e.Start()
	clk.Advance(time.Duration(e.Snapshot().TimeLeft) * time.Second)
}
