package render

import (
	"io"

	"github.com/xuri/excelize/v2"
)

// XLSX writes the result rows as an Excel workbook with a single worksheet.
type XLSX struct {
	Sheet string
}

func (x XLSX) Render(w io.Writer, page Page) error {
	f := excelize.NewFile()
	defer f.Close()

	name := x.Sheet
	if name == "" {
		name = "Results"
	}

	if err := f.SetSheetName("Sheet1", name); err != nil {
		return err
	}

	header := []any{"Text", "Row", "Checked"}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return err
	}

	for i, row := range page.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}

		record := []any{row.Text, row.Row, row.Checked}
		if err := f.SetSheetRow(name, cell, &record); err != nil {
			return err
		}
	}

	summary := map[string]any{
		"E1": "Query",
		"F1": page.Query,
		"E2": "Searched",
		"F2": page.SearchedAt,
	}

	for cell, v := range summary {
		if err := f.SetCellValue(name, cell, v); err != nil {
			return err
		}
	}

	_, err := f.WriteTo(w)

	return err
}
