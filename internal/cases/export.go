package cases

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Cases"

var exportHeaders = []string{
	"Date", "File", "Status", "Document Type", "Summary",
	"Key Points", "Risks", "Actions", "Parties", "Dates", "Record ID",
}

// ExportXLSX renders records as a single-sheet workbook, one row per record.
// List fields are joined with newlines inside their cell.
func ExportXLSX(records []Record) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exportSheet, cell, h); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	for i, r := range records {
		row := i + 2
		values := []any{
			r.Date, r.FileName, r.Status, r.DocumentType, r.Summary,
			joinLines(r.KeyPoints), joinLines(r.Risks), joinLines(r.Actions),
			joinLines(r.Parties), joinLines(r.Dates), r.ID.String(),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(exportSheet, cell, v); err != nil {
				return nil, fmt.Errorf("write row %d: %w", row, err)
			}
		}
	}

	_ = f.SetColWidth(exportSheet, "A", "A", 12)
	_ = f.SetColWidth(exportSheet, "B", "D", 24)
	_ = f.SetColWidth(exportSheet, "E", "H", 60)
	_ = f.SetColWidth(exportSheet, "I", "J", 30)
	_ = f.SetColWidth(exportSheet, "K", "K", 38)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func joinLines(items []string) string {
	return strings.Join(items, "\n")
}
