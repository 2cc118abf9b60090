package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/bbomodoro/internal/engine"
)

// timerModel renders the engine's countdown. It holds no timing state of
// its own; every frame reads a fresh snapshot.
type timerModel struct {
	engine *engine.Engine
	width  int
	height int

	bar progress.Model
}

func newTimerModel(e *engine.Engine) timerModel {
	return timerModel{
		engine: e,
		bar:    progress.New(progress.WithoutPercentage()),
	}
}

func (m *timerModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.bar.Width = max(w-16, 10)
}

func (m timerModel) update(msg tea.Msg) (timerModel, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(km, keys.Start):
		m.engine.Start()
	case key.Matches(km, keys.Pause):
		m.togglePause()
	case key.Matches(km, keys.Reset):
		m.engine.Reset()
	case key.Matches(km, keys.Skip):
		m.engine.Skip()
		next := strings.ToLower(m.engine.Snapshot().CurrentSession.Label())
		return m, func() tea.Msg {
			return statusMsg{text: "Skipped to " + next}
		}
	}
	return m, nil
}

// togglePause pauses a running timer and resumes a paused one.
func (m timerModel) togglePause() {
	switch m.engine.Snapshot().Mode() {
	case engine.Running:
		m.engine.Pause()
	case engine.Paused:
		m.engine.Start()
	}
}

func (m timerModel) view() string {
	w := m.width - 4
	st := m.engine.Snapshot()
	set := m.engine.Settings()

	style := sessionStyle(st.CurrentSession)
	label := style.Render(st.CurrentSession.Label())

	clock := style.Width(max(w-6, 1)).Align(lipgloss.Center).Render(formatClock(st.TimeLeft))
	if st.Mode() == engine.Paused {
		clock = warningStyle.Bold(true).Width(max(w-6, 1)).Align(lipgloss.Center).Render(formatClock(st.TimeLeft))
	}

	bar := m.bar
	bar.FullColor = string(sessionColor(st.CurrentSession))
	progressView := bar.ViewAs(sessionProgress(st, set))

	content := lipgloss.JoinVertical(lipgloss.Center,
		label,
		"",
		clock,
		modeLabel(st.Mode()),
		"",
		progressView,
		"",
		renderDots(st.SessionCount, set.LongBreakInterval),
	)

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Center, content, "", mutedStyle.Render(controlsHint(st.Mode()))),
	)
}

// sessionProgress is the elapsed fraction of the current session.
func sessionProgress(st engine.State, set engine.Settings) float64 {
	total := set.Duration(st.CurrentSession)
	if total <= 0 {
		return 0
	}
	p := float64(total-st.TimeLeft) / float64(total)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// renderDots shows completed work sessions in the current long-break cycle.
func renderDots(count, interval int) string {
	interval = engine.ClampInterval(interval)
	done := count % interval
	var parts []string
	for i := 0; i < interval; i++ {
		if i < done {
			parts = append(parts, sessionStyle(engine.Work).Render("●"))
		} else {
			parts = append(parts, mutedStyle.Render("○"))
		}
	}
	return strings.Join(parts, " ") + mutedStyle.Render(fmt.Sprintf("  %d completed", count))
}

func modeLabel(m engine.Mode) string {
	switch m {
	case engine.Running:
		return mutedStyle.Render("running")
	case engine.Paused:
		return warningStyle.Render("paused")
	default:
		return mutedStyle.Render("ready")
	}
}

func controlsHint(m engine.Mode) string {
	switch m {
	case engine.Running:
		return "space: pause  r: reset  n: skip"
	case engine.Paused:
		return "space: resume  r: reset  n: skip"
	default:
		return "s: start  n: skip"
	}
}
