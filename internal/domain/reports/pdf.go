package reports

import (
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"okrtrack/internal/progress"
)

var healthOrder = []progress.Health{
	progress.HealthCompleted,
	progress.HealthOnTrack,
	progress.HealthAtRisk,
	progress.HealthBehind,
}

func writePDF(preview Preview, path string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "OKR Report")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Generated: %s", preview.GeneratedAt.Format("2006-01-02 15:04")))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Period: %s    Type: %s", preview.TimePeriod, preview.ReportType))
	pdf.Ln(6)
	if preview.TeamName != "" {
		pdf.Cell(0, 7, fmt.Sprintf("Team: %s", preview.TeamName))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Summary")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Objectives: %d    Key results: %d    Check-ins: %d",
		preview.Summary.ObjectiveCount, preview.Summary.KeyResultCount, preview.Summary.CheckInCount))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Average progress: %.2f%%", preview.Summary.AverageProgress))
	pdf.Ln(6)
	for _, h := range healthOrder {
		if count, ok := preview.Summary.StatusDistribution[h]; ok {
			pdf.Cell(0, 6, fmt.Sprintf("%s: %d", h, count))
			pdf.Ln(6)
		}
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Objectives")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(80, 7, "Objective", "1", 0, "", false, 0, "")
	pdf.CellFormat(40, 7, "Team", "1", 0, "", false, 0, "")
	pdf.CellFormat(25, 7, "Progress", "1", 0, "", false, 0, "")
	pdf.CellFormat(25, 7, "Status", "1", 1, "", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, r := range preview.Rows {
		title := r.Title
		if len(title) > 48 {
			title = title[:45] + "..."
		}
		pdf.CellFormat(80, 7, title, "1", 0, "", false, 0, "")
		pdf.CellFormat(40, 7, r.TeamName, "1", 0, "", false, 0, "")
		pdf.CellFormat(25, 7, fmt.Sprintf("%.1f%%", r.Progress), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 7, string(r.Health), "1", 1, "", false, 0, "")
	}

	return pdf.OutputFileAndClose(path)
}
