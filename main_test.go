package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sadopc/bbomodoro/internal/config"
	"github.com/sadopc/bbomodoro/internal/engine"
	"github.com/sadopc/bbomodoro/internal/store"
)

func testConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Database.Path = filepath.Join(dir, "bbomodoro.db")
	cfg.Log.Level = "error"
	cfg.Timezone = "UTC"
	path := filepath.Join(dir, "config.yaml")
	if err := config.Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	return path, dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestStatsJSON(t *testing.T) {
	cfgPath, _ := testConfig(t)

	out, err := run(t, "--config", cfgPath, "stats", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var report statsReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(report.Week) != 7 {
		t.Fatalf("expected 7 days, got %d", len(report.Week))
	}
	if report.Today.Date != report.Week[6].Date {
		t.Fatal("today should close the week")
	}
}

func TestStatsTable(t *testing.T) {
	cfgPath, _ := testConfig(t)

	out, err := run(t, "--config", cfgPath, "stats")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Today") || !strings.Contains(out, "This week") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestExportFormats(t *testing.T) {
	cfgPath, dir := testConfig(t)

	for _, format := range []string{"csv", "json", "pdf"} {
		dest := filepath.Join(dir, "out."+format)
		if _, err := run(t, "--config", cfgPath, "export", "--format", format, "--out", dest); err != nil {
			t.Fatalf("%s: %v", format, err)
		}
		if _, err := os.Stat(dest); err != nil {
			t.Fatalf("%s: file missing: %v", format, err)
		}
	}
}

func TestExportUnknownFormat(t *testing.T) {
	cfgPath, _ := testConfig(t)
	_, err := run(t, "--config", cfgPath, "export", "--format", "xml")
	if err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Fatalf("expected unknown format error, got %v", err)
	}
}

func TestWriteStats(t *testing.T) {
	var buf bytes.Buffer
	writeStats(&buf, statsReport{})
	if !strings.Contains(buf.String(), "0 min") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

// seedStore writes today's statistics and custom settings into the database.
func seedStore(t *testing.T, dir string) {
	t.Helper()
	s, err := store.New(filepath.Join(dir, "bbomodoro.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	today := time.Now().UTC().Format("2006-01-02")
	ctx := context.Background()
	stats := fmt.Sprintf(`[{"date":%q,"completedSessions":3,"totalFocusTime":4500}]`, today)
	if err := s.Set(ctx, engine.StatsKey, stats); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, engine.SettingsKey, `{"workDuration":3000}`); err != nil {
		t.Fatal(err)
	}
}

func TestDataListEmpty(t *testing.T) {
	cfgPath, _ := testConfig(t)

	out, err := run(t, "--config", cfgPath, "data", "list")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "no stored data") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestDataListAndReset(t *testing.T) {
	cfgPath, dir := testConfig(t)
	seedStore(t, dir)

	out, err := run(t, "--config", cfgPath, "data", "list")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, engine.StatsKey) || !strings.Contains(out, engine.SettingsKey) {
		t.Fatalf("expected both keys listed:\n%s", out)
	}

	out, err = run(t, "--config", cfgPath, "data", "reset", "--stats")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "deleted "+engine.StatsKey) {
		t.Fatalf("unexpected reset output:\n%s", out)
	}

	out, err = run(t, "--config", cfgPath, "stats", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var report statsReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if report.Today.CompletedSessions != 0 {
		t.Fatalf("statistics should be gone after reset, got %+v", report.Today)
	}

	out, err = run(t, "--config", cfgPath, "data", "list")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, engine.StatsKey) || !strings.Contains(out, engine.SettingsKey) {
		t.Fatalf("only settings should remain:\n%s", out)
	}
}

func TestDataResetNeedsTarget(t *testing.T) {
	cfgPath, _ := testConfig(t)
	_, err := run(t, "--config", cfgPath, "data", "reset")
	if err == nil || !strings.Contains(err.Error(), "nothing to reset") {
		t.Fatalf("expected nothing to reset error, got %v", err)
	}
}
