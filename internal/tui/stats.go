package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/bbomodoro/internal/engine"
)

type statsModel struct {
	engine *engine.Engine
	width  int
	height int

	today engine.DailyStat
	week  []engine.DailyStat

	chart barchart.Model
}

func newStatsModel(e *engine.Engine) statsModel {
	return statsModel{
		engine: e,
		chart:  barchart.New(60, 12),
	}
}

func (s *statsModel) setSize(w, h int) {
	s.width = w
	s.height = h
	s.buildChart()
}

type statsDataMsg struct {
	today engine.DailyStat
	week  []engine.DailyStat
}

func (s statsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		return statsDataMsg{
			today: s.engine.TodayStats(),
			week:  s.engine.WeekStats(),
		}
	}
}

func (s statsModel) update(msg tea.Msg) (statsModel, tea.Cmd) {
	if msg, ok := msg.(statsDataMsg); ok {
		s.today = msg.today
		s.week = msg.week
		s.buildChart()
	}
	return s, nil
}

// weekSummary is the seven-day total and the per-day average.
type weekSummary struct {
	sessions   int
	focus      int
	avgSession float64
}

func summarize(week []engine.DailyStat) weekSummary {
	var ws weekSummary
	for _, d := range week {
		ws.sessions += d.CompletedSessions
		ws.focus += d.TotalFocusTime
	}
	if len(week) > 0 {
		ws.avgSession = float64(ws.sessions) / float64(len(week))
	}
	return ws
}

func (s *statsModel) buildChart() {
	chartWidth := max(s.width-8, 20)
	chartHeight := 10
	if s.height > 30 {
		chartHeight = 14
	}

	s.chart = barchart.New(chartWidth, chartHeight)

	barStyle := lipgloss.NewStyle().Foreground(colorWork)
	var bars []barchart.BarData
	for _, d := range s.week {
		bars = append(bars, barchart.BarData{
			Label: dayLabel(d.Date),
			Values: []barchart.BarValue{{
				Name:  "sessions",
				Value: float64(d.CompletedSessions),
				Style: barStyle,
			}},
		})
	}
	if len(bars) == 0 {
		return
	}

	s.chart.PushAll(bars)
	s.chart.Draw()
}

// dayLabel turns a YYYY-MM-DD key into a short weekday label.
func dayLabel(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("Mon")
}

func (s statsModel) view() string {
	w := s.width - 4
	ws := summarize(s.week)

	todayRows := []string{
		titleStyle.Render("Today"),
		fmt.Sprintf("  %-16s %s", "Sessions", valueStyle.Render(fmt.Sprintf("%d", s.today.CompletedSessions))),
		fmt.Sprintf("  %-16s %s", "Focus time", valueStyle.Render(formatFocus(s.today.TotalFocusTime))),
	}
	weekRows := []string{
		titleStyle.Render("This week"),
		fmt.Sprintf("  %-16s %s", "Sessions", valueStyle.Render(fmt.Sprintf("%d", ws.sessions))),
		fmt.Sprintf("  %-16s %s", "Focus time", valueStyle.Render(formatFocus(ws.focus))),
		fmt.Sprintf("  %-16s %s", "Daily average", valueStyle.Render(fmt.Sprintf("%.1f", ws.avgSession))),
	}

	summary := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.JoinVertical(lipgloss.Left, todayRows...),
		"      ",
		lipgloss.JoinVertical(lipgloss.Left, weekRows...),
	)

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			summary, "", titleStyle.Render("Last 7 days"), s.chart.View(), "", s.renderTable(w),
		),
	)
}

func (s statsModel) renderTable(w int) string {
	if summarize(s.week).sessions == 0 {
		return mutedStyle.Render("  No sessions completed this week")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %9s %10s", "Date", "Sessions", "Focus")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", max(min(w-6, 33), 0))))
	for _, d := range s.week {
		rows = append(rows, fmt.Sprintf("  %-12s %9d %10s", d.Date, d.CompletedSessions, formatFocus(d.TotalFocusTime)))
	}
	return strings.Join(rows, "\n")
}
