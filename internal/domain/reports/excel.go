package reports

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// writeExcel renders the preview into a two-sheet workbook: Summary
// with the aggregate block, Objectives with one row per objective.
func writeExcel(preview Preview, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	const summarySheet = "Summary"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return err
	}

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	f.SetCellValue(summarySheet, "A1", "OKR Report")
	f.SetCellStyle(summarySheet, "A1", "A1", titleStyle)
	f.SetCellValue(summarySheet, "A2", "Generated")
	f.SetCellValue(summarySheet, "B2", preview.GeneratedAt.Format("2006-01-02 15:04"))
	f.SetCellValue(summarySheet, "A3", "Period")
	f.SetCellValue(summarySheet, "B3", preview.TimePeriod)
	f.SetCellValue(summarySheet, "A4", "Type")
	f.SetCellValue(summarySheet, "B4", preview.ReportType)
	if preview.TeamName != "" {
		f.SetCellValue(summarySheet, "A5", "Team")
		f.SetCellValue(summarySheet, "B5", preview.TeamName)
	}

	f.SetCellValue(summarySheet, "A7", "Objectives")
	f.SetCellValue(summarySheet, "B7", preview.Summary.ObjectiveCount)
	f.SetCellValue(summarySheet, "A8", "Key results")
	f.SetCellValue(summarySheet, "B8", preview.Summary.KeyResultCount)
	f.SetCellValue(summarySheet, "A9", "Check-ins")
	f.SetCellValue(summarySheet, "B9", preview.Summary.CheckInCount)
	f.SetCellValue(summarySheet, "A10", "Average progress")
	f.SetCellValue(summarySheet, "B10", preview.Summary.AverageProgress)

	row := 12
	f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), "Status")
	f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), "Count")
	f.SetCellStyle(summarySheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), headerStyle)
	for _, h := range healthOrder {
		if count, ok := preview.Summary.StatusDistribution[h]; ok {
			row++
			f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), string(h))
			f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), count)
		}
	}

	const objSheet = "Objectives"
	if _, err := f.NewSheet(objSheet); err != nil {
		return err
	}
	headers := []string{"Objective", "Team", "Owner", "Progress", "Status", "Key Results", "Check-ins"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		f.SetCellValue(objSheet, cell, h)
		f.SetCellStyle(objSheet, cell, cell, headerStyle)
	}
	for i, r := range preview.Rows {
		rowNum := i + 2
		values := []any{r.Title, r.TeamName, r.OwnerName, r.Progress, string(r.Health), r.KeyResultCount, r.CheckInCount}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
			if err != nil {
				return err
			}
			f.SetCellValue(objSheet, cell, v)
		}
	}
	if err := f.SetColWidth(objSheet, "A", "A", 40); err != nil {
		return err
	}

	return f.SaveAs(path)
}
