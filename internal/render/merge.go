package render

// Run is a maximal stretch of consecutive identical cell values.
type Run struct {
	Start  int // row index of the first cell
	Length int
}

// runs computes the maximal runs of consecutive equal values in a column.
// This is run-length encoding over adjacent cells, not a group-by: equal
// values separated by a different value form separate runs. Rows must
// already be in their final sort order.
func runs(column []string) []Run {
	var out []Run
	for i := 0; i < len(column); {
		j := i + 1
		for j < len(column) && column[j] == column[i] {
			j++
		}
		out = append(out, Run{Start: i, Length: j - i})
		i = j
	}
	return out
}

// spans expands runs into a per-row lookup: span[i] is the run length for
// the cell starting a run at row i, or 0 when the cell is covered by an
// earlier spanning cell.
func spans(column []string) []int {
	span := make([]int, len(column))
	for _, r := range runs(column) {
		span[r.Start] = r.Length
	}
	return span
}
