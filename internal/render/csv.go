package render

import (
	"encoding/csv"
	"fmt"
	"io"

	"twmw/internal/report"
)

// utf8BOM helps Excel recognize UTF-8 CSV files.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// RenderCSV writes the report as a flat CSV: one row per measure, one
// column per historical period. Merge columns are ignored for CSV; header
// renaming applies.
func RenderCSV(w io.Writer, rep *report.Report, opts Options) error {
	t := buildTable(rep, opts.Rename)

	if opts.BOM {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(t.headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, row := range t.cells {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
