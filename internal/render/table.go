// Package render emits report rows as CSV, rowspan-merged HTML, or a
// merged-cell XLSX workbook. The column layout is a named-field schema in
// order; physical positions (CSV column index, spreadsheet letter) are
// computed from it, never hardcoded in business logic.
package render

import (
	"strconv"

	"twmw/internal/report"
)

// Well-known field keys of the report schema. Date columns are keyed by
// their formatted label.
const (
	FieldCategory    = "category"
	FieldMeasureName = "measure_name"
	FieldUnit        = "unit"
	FieldScore       = "score"
	FieldScoreTotal  = "score_total"
)

// Options adjusts rendering.
type Options struct {
	// Rename substitutes column header labels, keyed by field key. Applied
	// last, as a pure label substitution.
	Rename map[string]string
	// MergeColumns names the field keys whose consecutive identical values
	// are collapsed into one spanning cell (HTML/XLSX only).
	MergeColumns []string
	// BOM prefixes CSV output with a UTF-8 byte order mark for Excel.
	BOM bool
}

// table is the materialized grid: ordered field keys, display headers and
// one row of string cells per report row.
type table struct {
	keys    []string
	headers []string
	cells   [][]string
}

// buildTable lays out a report into the schema order: category, measure
// name, unit, one column per historical date (chronological), score,
// score total.
func buildTable(rep *report.Report, rename map[string]string) table {
	keys := []string{FieldCategory, FieldMeasureName, FieldUnit}
	keys = append(keys, rep.Dates...)
	keys = append(keys, FieldScore, FieldScoreTotal)

	headers := make([]string, len(keys))
	for i, k := range keys {
		if renamed, ok := rename[k]; ok {
			headers[i] = renamed
		} else {
			headers[i] = k
		}
	}

	cells := make([][]string, 0, len(rep.Rows))
	for _, row := range rep.Rows {
		r := []string{row.Category, row.MeasureName, row.Unit}
		for _, d := range rep.Dates {
			if v, ok := row.Values[d]; ok {
				r = append(r, formatValue(v))
			} else {
				// Missing cells normalize to the canonical empty value.
				r = append(r, "")
			}
		}
		r = append(r, formatValue(row.Score), formatValue(row.ScoreTotal))
		cells = append(cells, r)
	}

	return table{keys: keys, headers: headers, cells: cells}
}

// columnIndex returns the physical position of a field key, or -1.
func (t table) columnIndex(key string) int {
	for i, k := range t.keys {
		if k == key {
			return i
		}
	}
	return -1
}

// column extracts one physical column of the grid.
func (t table) column(idx int) []string {
	col := make([]string, len(t.cells))
	for i, row := range t.cells {
		col[i] = row[idx]
	}
	return col
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
