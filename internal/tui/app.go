package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/hashicorp/go-hclog"

	"github.com/sadopc/bbomodoro/internal/engine"
	"github.com/sadopc/bbomodoro/internal/export"
)

// The view polls the engine several times per countdown second.
const refreshInterval = 200 * time.Millisecond

var exportFormats = []string{"CSV", "JSON", "PDF"}

// App is the root Bubble Tea model.
type App struct {
	engine *engine.Engine
	logger hclog.Logger
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int
	exportDir     string

	timer    timerModel
	stats    statsModel
	settings settingsModel

	// last observed snapshot, used to announce completions
	lastSession engine.SessionType
	lastCount   int

	help      help.Model
	status    string
	statusErr bool
}

func NewApp(e *engine.Engine, logger hclog.Logger) App {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	h := help.New()
	h.ShowAll = false

	st := e.Snapshot()
	return App{
		engine:      e,
		logger:      logger.Named("tui"),
		activeView:  viewTimer,
		timer:       newTimerModel(e),
		stats:       newStatsModel(e),
		settings:    newSettingsModel(e),
		lastSession: st.CurrentSession,
		lastCount:   st.SessionCount,
		help:        h,
	}
}

// Run starts the program on the alternate screen with focus reporting, so
// terminal blur reaches the engine as an inactive signal.
func Run(e *engine.Engine, logger hclog.Logger) error {
	p := tea.NewProgram(NewApp(e, logger), tea.WithAltScreen(), tea.WithReportFocus())
	_, err := p.Run()
	return err
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.stats.refresh(),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.timer.setSize(a.width, contentHeight)
		a.stats.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Suspend) {
			a.engine.AppStateChanged(engine.AppBackground)
			return a, tea.Suspend
		}

		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewTimer
			return a, nil
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewStats
			return a, a.stats.refresh()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewSettings
			return a, nil
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			if a.activeView == viewStats {
				return a, a.stats.refresh()
			}
			return a, nil
		}

		// Timer controls work from every view.
		if key.Matches(msg, keys.Start, keys.Pause, keys.Reset, keys.Skip) {
			var cmd tea.Cmd
			a.timer, cmd = a.timer.update(msg)
			return a.synced(), cmd
		}

	case tea.ResumeMsg:
		a.engine.AppStateChanged(engine.AppActive)
		return a, nil

	case tea.FocusMsg:
		a.engine.AppStateChanged(engine.AppActive)
		return a, nil

	case tea.BlurMsg:
		a.engine.AppStateChanged(engine.AppInactive)
		return a, nil

	case tickMsg:
		a = a.observe()
		cmds := []tea.Cmd{tickCmd()}
		if a.activeView == viewStats {
			cmds = append(cmds, a.stats.refresh())
		}
		return a, tea.Batch(cmds...)

	case statusMsg:
		a.status = msg.text
		a.statusErr = msg.isError
		if msg.isError {
			a.logger.Error(msg.text)
		}
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.statusErr = false
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

// observe compares the engine snapshot with the previous one and announces
// transitions the engine made on its own.
func (a App) observe() App {
	st := a.engine.Snapshot()
	switch {
	case st.SessionCount > a.lastCount:
		a.status = fmt.Sprintf("Work session %d complete", st.SessionCount)
		a.statusErr = false
		a.logger.Info("work session complete", "count", st.SessionCount)
	case st.CurrentSession != a.lastSession && a.lastSession.IsBreak():
		a.status = "Break over"
		a.statusErr = false
	}
	return a.synced()
}

// synced records the current snapshot so user commands are not announced
// as completions.
func (a App) synced() App {
	st := a.engine.Snapshot()
	a.lastSession = st.CurrentSession
	a.lastCount = st.SessionCount
	return a
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewTimer:
		a.timer, cmd = a.timer.update(msg)
	case viewStats:
		a.stats, cmd = a.stats.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	return a.activeView == viewSettings && a.settings.formActive
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewTimer:
		content = a.timer.view()
	case viewStats:
		content = a.stats.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(a.height-headerHeight-footerHeight, 1)

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("bbomodoro")
	gap := max(a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	switch {
	case a.status != "" && a.statusErr:
		status = errorStyle.Render(" " + a.status)
	case a.status != "":
		status = mutedStyle.Render(" " + a.status)
	}

	// Countdown indicator, visible from every view
	timerInfo := ""
	st := a.engine.Snapshot()
	switch st.Mode() {
	case engine.Running:
		timerInfo = sessionStyle(st.CurrentSession).Render(" ● " + formatClock(st.TimeLeft))
	case engine.Paused:
		timerInfo = warningStyle.Render(" ⏸ " + formatClock(st.TimeLeft))
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	rows := []string{titleStyle.Render("Export Format"), ""}
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: export  esc: cancel"))

	return activePanelStyle.Width(a.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	days := a.engine.Stats()
	dir := a.exportDir
	return func() tea.Msg {
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
			}
			dir = home
		}
		base := filepath.Join(dir, "bbomodoro-export-"+time.Now().Format("2006-01-02"))

		var path string
		var err error
		switch format {
		case 0:
			path = base + ".csv"
			err = export.ToCSV(days, path)
		case 1:
			path = base + ".json"
			err = export.ToJSON(days, path)
		default:
			path = base + ".pdf"
			err = export.ToPDF(days, path)
		}
		if err != nil {
			return statusMsg{text: fmt.Sprintf("%s error: %v", exportFormats[min(format, len(exportFormats)-1)], err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}
