package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/sadopc/bbomodoro/internal/engine"
)

func ToCSV(days []engine.DailyStat, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"Date", "Sessions", "Focus (s)", "Focus"}); err != nil {
		return err
	}

	for _, d := range days {
		row := []string{
			d.Date,
			fmt.Sprintf("%d", d.CompletedSessions),
			fmt.Sprintf("%d", d.TotalFocusTime),
			formatDuration(int64(d.TotalFocusTime)),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// totals sums sessions and focus seconds across days.
func totals(days []engine.DailyStat) (sessions, focus int) {
	for _, d := range days {
		sessions += d.CompletedSessions
		focus += d.TotalFocusTime
	}
	return sessions, focus
}
