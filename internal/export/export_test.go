package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sadopc/bbomodoro/internal/engine"
)

func sampleData() []engine.DailyStat {
	return []engine.DailyStat{
		{Date: "2026-10-13", CompletedSessions: 4, TotalFocusTime: 6000},
		{Date: "2026-10-14", CompletedSessions: 0, TotalFocusTime: 0},
		{Date: "2026-10-15", CompletedSessions: 2, TotalFocusTime: 3600},
	}
}

// ============================================================
// CSV
// ============================================================

func TestToCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.csv")

	if err := ToCSV(sampleData(), path); err != nil {
		t.Fatalf("ToCSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 4 {
		t.Fatalf("expected 4 rows (header + 3), got %d", len(records))
	}
	if strings.Join(records[0], ",") != "Date,Sessions,Focus (s),Focus" {
		t.Fatalf("unexpected header %v", records[0])
	}

	row := records[3]
	if row[0] != "2026-10-15" {
		t.Fatalf("Date = %q, want 2026-10-15", row[0])
	}
	if row[1] != "2" {
		t.Fatalf("Sessions = %q, want 2", row[1])
	}
	if row[2] != "3600" {
		t.Fatalf("Focus (s) = %q, want 3600", row[2])
	}
	if row[3] != "01:00:00" {
		t.Fatalf("Focus = %q, want 01:00:00", row[3])
	}
}

func TestToCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")

	if err := ToCSV(nil, path); err != nil {
		t.Fatal(err)
	}

	f, _ := os.Open(path)
	defer f.Close()
	records, _ := csv.NewReader(f).ReadAll()
	if len(records) != 1 {
		t.Fatalf("expected 1 row (header only), got %d", len(records))
	}
}

func TestToCSVBadPath(t *testing.T) {
	if err := ToCSV(nil, "/nonexistent/dir/file.csv"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.json")

	if err := ToJSON(sampleData(), path); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var result jsonExport
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if result.Count != 3 || len(result.Days) != 3 {
		t.Fatalf("count = %d, days = %d, want 3", result.Count, len(result.Days))
	}
	if _, err := time.Parse(time.RFC3339, result.ExportedAt); err != nil {
		t.Fatalf("exported_at is not valid RFC3339: %q", result.ExportedAt)
	}

	d := result.Days[0]
	if d.Date != "2026-10-13" || d.Sessions != 4 || d.FocusSeconds != 6000 {
		t.Fatalf("unexpected first day %+v", d)
	}
	if d.Focus != "01:40:00" {
		t.Fatalf("Focus = %q, want 01:40:00", d.Focus)
	}
}

func TestToJSONEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")

	if err := ToJSON(nil, path); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	var result jsonExport
	json.Unmarshal(data, &result)

	if result.Count != 0 {
		t.Fatalf("count = %d, want 0", result.Count)
	}
	if result.Days != nil {
		t.Fatal("days should be nil/null for empty export")
	}
}

func TestToJSONBadPath(t *testing.T) {
	if err := ToJSON(nil, "/nonexistent/dir/file.json"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestToJSONPrettyPrinted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pretty.json")
	ToJSON(nil, path)

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "\n  ") {
		t.Fatal("JSON should be pretty-printed and indented")
	}
}

// ============================================================
// PDF
// ============================================================

func TestToPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.pdf")

	if err := ToPDF(sampleData(), path); err != nil {
		t.Fatalf("ToPDF: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF: %q", data[:8])
	}
}

func TestToPDFEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")
	if err := ToPDF(nil, path); err != nil {
		t.Fatal(err)
	}
}

func TestToPDFBadPath(t *testing.T) {
	if err := ToPDF(sampleData(), "/nonexistent/dir/report.pdf"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

// ============================================================
// helpers
// ============================================================

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		secs int64
		want string
	}{
		{0, "00:00:00"},
		{1, "00:00:01"},
		{59, "00:00:59"},
		{60, "00:01:00"},
		{1500, "00:25:00"},
		{3661, "01:01:01"},
		{36000, "10:00:00"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.secs); got != tt.want {
			t.Errorf("formatDuration(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}

func TestTotals(t *testing.T) {
	sessions, focus := totals(sampleData())
	if sessions != 6 || focus != 9600 {
		t.Fatalf("totals = %d/%d, want 6/9600", sessions, focus)
	}
}
