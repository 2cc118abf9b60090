package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/bbomodoro/internal/engine"
)

type settingsModel struct {
	engine *engine.Engine
	width  int
	height int

	cursor     int // selected duration row
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	work       *string
	shortBreak *string
	longBreak  *string
	interval   *string
	autoBreaks *bool
	autoWork   *bool
	sound      *bool
}

func newSettingsModel(e *engine.Engine) settingsModel {
	w, sb, lb, iv := "", "", "", ""
	ab, aw, snd := false, false, false
	return settingsModel{
		engine:     e,
		work:       &w,
		shortBreak: &sb,
		longBreak:  &lb,
		interval:   &iv,
		autoBreaks: &ab,
		autoWork:   &aw,
		sound:      &snd,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch {
	case key.Matches(km, keys.Enter):
		return s.showForm()
	case key.Matches(km, keys.Up):
		if s.cursor > 0 {
			s.cursor--
		}
	case key.Matches(km, keys.Down):
		if s.cursor < len(durationRows)-1 {
			s.cursor++
		}
	case key.Matches(km, keys.Inc):
		s.step(1)
	case key.Matches(km, keys.Dec):
		s.step(-1)
	}
	return s, nil
}

var durationRows = []engine.SessionType{engine.Work, engine.ShortBreak, engine.LongBreak}

// step moves the selected duration by whole minutes, never below one.
func (s settingsModel) step(minutes int) {
	cur := s.engine.Settings()
	next := engine.StepDuration(cur.Duration(durationRows[s.cursor]), minutes)
	var p engine.SettingsPatch
	switch durationRows[s.cursor] {
	case engine.Work:
		p.WorkDuration = engine.Int(next)
	case engine.ShortBreak:
		p.ShortBreakDuration = engine.Int(next)
	case engine.LongBreak:
		p.LongBreakDuration = engine.Int(next)
	}
	s.engine.UpdateSettings(p)
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	cur := s.engine.Settings()
	*s.work = secsToMin(cur.WorkDuration)
	*s.shortBreak = secsToMin(cur.ShortBreakDuration)
	*s.longBreak = secsToMin(cur.LongBreakDuration)
	*s.interval = strconv.Itoa(cur.LongBreakInterval)
	*s.autoBreaks = cur.AutoStartBreaks
	*s.autoWork = cur.AutoStartWork
	*s.sound = cur.SoundEnabled

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Work (min)").Value(s.work).Validate(validateWhole),
			huh.NewInput().Title("Short break (min)").Value(s.shortBreak).Validate(validateWhole),
			huh.NewInput().Title("Long break (min)").Value(s.longBreak).Validate(validateWhole),
			huh.NewInput().Title("Work sessions before long break").Value(s.interval).Validate(validateWhole),
		).Title("Durations"),
		huh.NewGroup(
			huh.NewConfirm().Title("Auto-start breaks").Value(s.autoBreaks),
			huh.NewConfirm().Title("Auto-start work").Value(s.autoWork),
			huh.NewConfirm().Title("Sound").Value(s.sound),
		).Title("Behaviour"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, keys.Back) {
		s.formActive = false
		s.form = nil
		return s, nil
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	switch s.form.State {
	case huh.StateCompleted:
		s.formActive = false
		s.form = nil
		s.engine.UpdateSettings(s.patch())
		return s, func() tea.Msg { return statusMsg{text: "Settings saved"} }
	case huh.StateAborted:
		s.formActive = false
		s.form = nil
		return s, nil
	}

	return s, cmd
}

// patch converts the form values to a settings patch. Durations are clamped
// to one minute and the interval to one session.
func (s settingsModel) patch() engine.SettingsPatch {
	var p engine.SettingsPatch
	if mins, err := parseWhole(*s.work); err == nil {
		p.WorkDuration = engine.Int(engine.ClampDuration(mins * 60))
	}
	if mins, err := parseWhole(*s.shortBreak); err == nil {
		p.ShortBreakDuration = engine.Int(engine.ClampDuration(mins * 60))
	}
	if mins, err := parseWhole(*s.longBreak); err == nil {
		p.LongBreakDuration = engine.Int(engine.ClampDuration(mins * 60))
	}
	if n, err := parseWhole(*s.interval); err == nil {
		p.LongBreakInterval = engine.Int(engine.ClampInterval(n))
	}
	p.AutoStartBreaks = engine.Bool(*s.autoBreaks)
	p.AutoStartWork = engine.Bool(*s.autoWork)
	p.SoundEnabled = engine.Bool(*s.sound)
	return p
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	cur := s.engine.Settings()
	items := []struct{ label, value string }{
		{"Work", fmt.Sprintf("%d min", cur.WorkDuration/60)},
		{"Short break", fmt.Sprintf("%d min", cur.ShortBreakDuration/60)},
		{"Long break", fmt.Sprintf("%d min", cur.LongBreakDuration/60)},
		{"Long break every", fmt.Sprintf("%d sessions", cur.LongBreakInterval)},
		{"Auto-start breaks", onOff(cur.AutoStartBreaks)},
		{"Auto-start work", onOff(cur.AutoStartWork)},
		{"Sound", onOff(cur.SoundEnabled)},
	}

	rows := []string{title, ""}
	for i, it := range items {
		cursor := "  "
		if i == s.cursor {
			cursor = selectedItemStyle.Render("> ")
		}
		label := lipgloss.NewStyle().Width(24).Render(it.label)
		rows = append(rows, fmt.Sprintf("%s%s %s", cursor, label, valueStyle.Render(it.value)))
	}
	rows = append(rows, "", mutedStyle.Render("↑/↓ select  +/-: one minute  enter: edit all"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

var errNotWhole = errors.New("enter a whole number greater than zero")

func parseWhole(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, errNotWhole
	}
	return n, nil
}

func validateWhole(s string) error {
	_, err := parseWhole(s)
	return err
}

func secsToMin(secs int) string {
	return strconv.Itoa(secs / 60)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
