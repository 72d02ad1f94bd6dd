package render

import (
	"html/template"
	"io"

	"twmw/internal/report"
)

// htmlCell is one rendered <td>. A cell covered by an earlier rowspan is
// skipped entirely.
type htmlCell struct {
	Value   string
	Rowspan int
	Skip    bool
}

type htmlRow struct {
	Cells []htmlCell
}

type htmlTable struct {
	Headers []string
	Rows    []htmlRow
}

var reportTemplate = template.Must(template.New("report").Parse(`<table class="report-table">
<thead>
<tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr>
</thead>
<tbody>
{{range .Rows}}<tr>{{range .Cells}}{{if not .Skip}}{{if gt .Rowspan 1}}<td rowspan="{{.Rowspan}}">{{.Value}}</td>{{else}}<td>{{.Value}}</td>{{end}}{{end}}{{end}}</tr>
{{end}}</tbody>
</table>
`))

// RenderHTML writes the report as an HTML table. For each column named in
// MergeColumns, consecutive identical values become a single cell spanning
// the run; other columns render one cell per row unconditionally. Rows are
// assumed to be in their final sort order from the builder.
func RenderHTML(w io.Writer, rep *report.Report, opts Options) error {
	t := buildTable(rep, opts.Rename)

	// Per-column rowspan lookups for the merged columns.
	merged := make(map[int][]int)
	for _, key := range opts.MergeColumns {
		if idx := t.columnIndex(key); idx >= 0 {
			merged[idx] = spans(t.column(idx))
		}
	}

	out := htmlTable{Headers: t.headers}
	for ri, row := range t.cells {
		hr := htmlRow{Cells: make([]htmlCell, len(row))}
		for ci, value := range row {
			cell := htmlCell{Value: value, Rowspan: 1}
			if span, ok := merged[ci]; ok {
				if span[ri] == 0 {
					cell.Skip = true
				} else {
					cell.Rowspan = span[ri]
				}
			}
			hr.Cells[ci] = cell
		}
		out.Rows = append(out.Rows, hr)
	}

	return reportTemplate.Execute(w, out)
}
