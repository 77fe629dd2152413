package ingest

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/smartquote-rcs/smartquote-backend-sub003/internal"
)

const (
	detailsSheet = "details"
	summarySheet = "summary"
)

func ExportSummaryToXLSX(summary internal.IngestionSummary, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), detailsSheet); err != nil {
		return err
	}

	headers := []string{"product_name", "status", "id", "price", "error_message"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(detailsSheet, cell, h)
	}

	for i, d := range summary.Details {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(detailsSheet, cell, value)
		}

		set(1, d.ProductName)
		set(2, string(d.Status))
		set(3, derefInt64(d.ID))
		set(4, derefFloat(d.Price))
		set(5, d.ErrorMessage)
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}
	counts := [][]any{
		{"saved", summary.SavedCount},
		{"errors", summary.ErrorCount},
		{"processed", summary.Processed()},
		{"inserted", summary.InsertedCount()},
	}
	for i, row := range counts {
		for j, v := range row {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+1)
			_ = f.SetCellValue(summarySheet, cell, v)
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func derefFloat(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

func derefInt64(v *int64) any {
	if v == nil {
		return ""
	}
	return *v
}
