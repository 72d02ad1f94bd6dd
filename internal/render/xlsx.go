package render

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"twmw/internal/report"
)

const sheetName = "Report"

// RenderXLSX writes the report as a spreadsheet with merged cells. Merge
// semantics match RenderHTML: consecutive identical values in a merge
// column become one cell spanning the run. Physical cell coordinates are
// derived from the field schema order.
func RenderXLSX(path string, rep *report.Report, opts Options) error {
	t := buildTable(rep, opts.Rename)

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for ci, header := range t.headers {
		cell, err := excelize.CoordinatesToCellName(ci+1, 1)
		if err != nil {
			return fmt.Errorf("failed to compute header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return fmt.Errorf("failed to write header %q: %w", header, err)
		}
	}

	for ri, row := range t.cells {
		for ci, value := range row {
			cell, err := excelize.CoordinatesToCellName(ci+1, ri+2)
			if err != nil {
				return fmt.Errorf("failed to compute cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return fmt.Errorf("failed to write cell %s: %w", cell, err)
			}
		}
	}

	for _, key := range opts.MergeColumns {
		ci := t.columnIndex(key)
		if ci < 0 {
			continue
		}
		for _, run := range runs(t.column(ci)) {
			if run.Length < 2 {
				continue
			}
			top, err := excelize.CoordinatesToCellName(ci+1, run.Start+2)
			if err != nil {
				return fmt.Errorf("failed to compute merge start: %w", err)
			}
			bottom, err := excelize.CoordinatesToCellName(ci+1, run.Start+run.Length+1)
			if err != nil {
				return fmt.Errorf("failed to compute merge end: %w", err)
			}
			if err := f.MergeCell(sheetName, top, bottom); err != nil {
				return fmt.Errorf("failed to merge %s:%s: %w", top, bottom, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
