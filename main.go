package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sadopc/bbomodoro/internal/app"
	"github.com/sadopc/bbomodoro/internal/engine"
	"github.com/sadopc/bbomodoro/internal/export"
	"github.com/sadopc/bbomodoro/internal/tui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "bbomodoro",
		Short:         "Pomodoro timer for the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return fmt.Errorf("the timer needs an interactive terminal; try %q", "bbomodoro stats")
			}
			a, err := app.New(cmd.Context(), app.Options{ConfigPath: configPath})
			if err != nil {
				return err
			}
			defer a.Close()
			return tui.Run(a.Engine, a.Logger)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default <user config dir>/bbomodoro/config.yaml)")

	root.AddCommand(newStatsCmd(&configPath))
	root.AddCommand(newExportCmd(&configPath))
	root.AddCommand(newDataCmd(&configPath))
	return root
}

// loadCLI opens the application for a one-shot command. Logs go to stderr
// and the speaker is never touched.
func loadCLI(ctx context.Context, configPath string) (*app.App, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return app.New(ctx, app.Options{ConfigPath: configPath, LogOutput: os.Stderr, Mute: true})
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

type statsReport struct {
	Today engine.DailyStat   `json:"today"`
	Week  []engine.DailyStat `json:"week"`
}

func newStatsCmd(configPath *string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show today's and this week's focus statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadCLI(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			report := statsReport{Today: a.Engine.TodayStats(), Week: a.Engine.WeekStats()}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			writeStats(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func writeStats(w io.Writer, r statsReport) {
	var sessions, focus int
	for _, d := range r.Week {
		sessions += d.CompletedSessions
		focus += d.TotalFocusTime
	}

	fmt.Fprintf(w, "Today      %3d sessions  %s\n", r.Today.CompletedSessions, minutes(r.Today.TotalFocusTime))
	fmt.Fprintf(w, "This week  %3d sessions  %s\n\n", sessions, minutes(focus))
	for _, d := range r.Week {
		fmt.Fprintf(w, "  %s  %3d  %s\n", d.Date, d.CompletedSessions, strings.Repeat("#", d.CompletedSessions))
	}
}

func minutes(secs int) string {
	return fmt.Sprintf("%d min", secs/60)
}

func newExportCmd(configPath *string) *cobra.Command {
	var format, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export daily statistics to CSV, JSON or PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format = strings.ToLower(format)
			if out == "" {
				out = fmt.Sprintf("bbomodoro-export-%s.%s", time.Now().Format("2006-01-02"), format)
			}

			var write func([]engine.DailyStat, string) error
			switch format {
			case "csv":
				write = export.ToCSV
			case "json":
				write = export.ToJSON
			case "pdf":
				write = export.ToPDF
			default:
				return fmt.Errorf("unknown format %q (want csv, json or pdf)", format)
			}

			a, err := loadCLI(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := write(a.Engine.Stats(), out); err != nil {
				return err
			}
			abs, _ := filepath.Abs(out)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported %s\n", abs)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "csv", "output format: csv|json|pdf")
	cmd.Flags().StringVar(&out, "out", "", "output file (default bbomodoro-export-<date>.<format>)")
	return cmd
}

func newDataCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Inspect or reset stored data",
	}
	cmd.AddCommand(newDataListCmd(configPath))
	cmd.AddCommand(newDataResetCmd(configPath))
	return cmd
}

func newDataListCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored keys with their size and last update",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)
			a, err := loadCLI(ctx, *configPath)
			if err != nil {
				return err
			}
			defer a.Close()
			a.Engine.Flush()

			entries, err := a.Store.List(ctx)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(entries) == 0 {
				_, _ = fmt.Fprintln(w, "no stored data")
				return nil
			}
			for _, e := range entries {
				_, _ = fmt.Fprintf(w, "%-20s %7d bytes  updated %s\n",
					e.Key, len(e.Value), e.UpdatedAt.Local().Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

func newDataResetCmd(configPath *string) *cobra.Command {
	var stats, settings bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete stored statistics or settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var keys []string
			if stats {
				keys = append(keys, engine.StatsKey)
			}
			if settings {
				keys = append(keys, engine.SettingsKey)
			}
			if len(keys) == 0 {
				return fmt.Errorf("nothing to reset; pass --stats or --settings")
			}

			ctx := commandContext(cmd)
			a, err := loadCLI(ctx, *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			// The engine is closed first so no queued write lands after the delete.
			if err := a.Engine.Close(); err != nil {
				return err
			}
			for _, key := range keys {
				if err := a.Store.Delete(ctx, key); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", key)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&stats, "stats", false, "delete daily statistics")
	cmd.Flags().BoolVar(&settings, "settings", false, "delete saved timer settings")
	return cmd
}
