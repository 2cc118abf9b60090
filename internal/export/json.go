package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/bbomodoro/internal/engine"
)

type jsonExport struct {
	ExportedAt string    `json:"exported_at"`
	Count      int       `json:"count"`
	Days       []jsonDay `json:"days"`
}

type jsonDay struct {
	Date         string `json:"date"`
	Sessions     int    `json:"sessions"`
	FocusSeconds int    `json:"focus_seconds"`
	Focus        string `json:"focus"`
}

func ToJSON(days []engine.DailyStat, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(days),
	}

	for _, d := range days {
		export.Days = append(export.Days, jsonDay{
			Date:         d.Date,
			Sessions:     d.CompletedSessions,
			FocusSeconds: d.TotalFocusTime,
			Focus:        formatDuration(int64(d.TotalFocusTime)),
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
