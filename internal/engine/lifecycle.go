package engine

import "time"

// AppState is the host process lifecycle signal.
type AppState int

const (
	AppActive AppState = iota
	AppBackground
	AppInactive
)

func (s AppState) String() string {
	switch s {
	case AppActive:
		return "active"
	case AppBackground:
		return "background"
	case AppInactive:
		return "inactive"
	default:
		return "unknown"
	}
}

// AppStateChanged applies background drift correction. Going to background
// while running records the suspension time and stops ticking; coming back
// subtracts the whole seconds spent away. Completion is left to the re-armed
// countdown, never fired here.
func (e *Engine) AppStateChanged(s AppState) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch s {
	case AppBackground:
		if e.state.Mode() != Running || e.state.LastSuspendedAt != nil {
			return
		}
		now := e.clock.Now()
		e.state.LastSuspendedAt = &now
		e.cancelLocked()
		e.logger.Debug("suspended", "time_left", e.state.TimeLeft)

	case AppActive:
		if e.state.LastSuspendedAt == nil || e.state.Mode() != Running {
			return
		}
		elapsed := int(e.clock.Now().Sub(*e.state.LastSuspendedAt) / time.Second)
		if elapsed < 0 {
			elapsed = 0
		}
		e.state.TimeLeft = max(e.state.TimeLeft-elapsed, 0)
		e.state.LastSuspendedAt = nil
		e.armLocked()
		e.logger.Debug("resumed", "elapsed", elapsed, "time_left", e.state.TimeLeft)
	}
}
