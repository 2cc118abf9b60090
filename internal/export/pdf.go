package export

import (
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/sadopc/bbomodoro/internal/engine"
)

// ToPDF writes a one-page focus report with a row per day and a totals line.
func ToPDF(days []engine.DailyStat, path string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Focus Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated %s", time.Now().Format("2006-01-02 15:04")))
	pdf.Ln(10)

	widths := []float64{50, 40, 50}
	pdf.SetFont("Arial", "B", 12)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range []string{"Date", "Sessions", "Focus"} {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 12)
	if len(days) == 0 {
		pdf.CellFormat(widths[0]+widths[1]+widths[2], 8, "No sessions recorded.", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}
	for _, d := range days {
		pdf.CellFormat(widths[0], 8, d.Date, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 8, fmt.Sprintf("%d", d.CompletedSessions), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 8, formatDuration(int64(d.TotalFocusTime)), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	sessions, focus := totals(days)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(widths[0], 8, "Total", "1", 0, "L", true, 0, "")
	pdf.CellFormat(widths[1], 8, fmt.Sprintf("%d", sessions), "1", 0, "R", true, 0, "")
	pdf.CellFormat(widths[2], 8, formatDuration(int64(focus)), "1", 0, "R", true, 0, "")
	pdf.Ln(-1)

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf file: %w", err)
	}
	return nil
}
