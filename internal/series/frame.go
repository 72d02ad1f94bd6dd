package series

import (
	"sort"
	"time"
)

// Frame is a table whose rows are dates and whose columns are measure ids.
// Row order is always ascending by date; column order is sorted by id so
// that a frame built from the same inputs is identical regardless of the
// order the inputs arrived in. Missing cells are absent, not zero.
type Frame struct {
	dates   []time.Time
	columns []string
	cells   map[string]map[time.Time]float64
}

// NewFrame returns an empty frame.
func NewFrame() Frame {
	return Frame{cells: make(map[string]map[time.Time]float64)}
}

// OuterJoin merges the given series into one frame on the union of their
// dates. Column order is the sorted key order, never iteration order.
func OuterJoin(byID map[string]TimeSeries) Frame {
	f := NewFrame()

	dateSet := make(map[time.Time]struct{})
	for id, s := range byID {
		f.columns = append(f.columns, id)
		col := make(map[time.Time]float64, s.Len())
		for _, p := range s.Points() {
			col[p.Date] = p.Value
			dateSet[p.Date] = struct{}{}
		}
		f.cells[id] = col
	}
	sort.Strings(f.columns)

	f.dates = make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		f.dates = append(f.dates, d)
	}
	sort.Slice(f.dates, func(i, j int) bool { return f.dates[i].Before(f.dates[j]) })

	return f
}

// Dates returns the row index in ascending order.
func (f Frame) Dates() []time.Time {
	return f.dates
}

// Columns returns the column ids in deterministic (sorted) order.
func (f Frame) Columns() []string {
	return f.columns
}

// Empty reports whether the frame has no rows or no columns.
func (f Frame) Empty() bool {
	return len(f.dates) == 0 || len(f.columns) == 0
}

// Value returns the cell for (column, date).
func (f Frame) Value(column string, date time.Time) (float64, bool) {
	col, ok := f.cells[column]
	if !ok {
		return 0, false
	}
	v, ok := col[Day(date)]
	return v, ok
}

// Column extracts one column as a time series over the frame's dates.
func (f Frame) Column(id string) TimeSeries {
	var s TimeSeries
	col, ok := f.cells[id]
	if !ok {
		return s
	}
	for _, d := range f.dates {
		if v, ok := col[d]; ok {
			s.Set(d, v)
		}
	}
	return s
}

// LastValue returns the chronologically last present cell of a column.
func (f Frame) LastValue(column string) (float64, bool) {
	col, ok := f.cells[column]
	if !ok {
		return 0, false
	}
	for i := len(f.dates) - 1; i >= 0; i-- {
		if v, ok := col[f.dates[i]]; ok {
			return v, true
		}
	}
	return 0, false
}

// ForwardFill fills absent cells with the most recent earlier observation
// of the same column. Cells before a column's first observation stay
// absent, so no fill ever draws from a later date.
func (f Frame) ForwardFill() Frame {
	out := f.clone()
	for _, id := range out.columns {
		col := out.cells[id]
		var last float64
		have := false
		for _, d := range out.dates {
			if v, ok := col[d]; ok {
				last, have = v, true
				continue
			}
			if have {
				col[d] = last
			}
		}
	}
	return out
}

// Resample groups rows into reporting periods and keeps only the last row
// of each period, re-indexed to the period end. Within a period the most
// recent observation stands for the period.
func (f Frame) Resample(freq Frequency) Frame {
	out := NewFrame()
	out.columns = append(out.columns, f.columns...)

	// Last date of each period, in first-seen (ascending) period order.
	lastInPeriod := make(map[string]time.Time)
	var periodOrder []string
	for _, d := range f.dates {
		key := freq.PeriodKey(d)
		if _, seen := lastInPeriod[key]; !seen {
			periodOrder = append(periodOrder, key)
		}
		lastInPeriod[key] = d
	}

	for _, id := range out.columns {
		out.cells[id] = make(map[time.Time]float64, len(periodOrder))
	}
	for _, key := range periodOrder {
		src := lastInPeriod[key]
		dst := freq.PeriodEnd(src)
		out.dates = append(out.dates, dst)
		for _, id := range out.columns {
			if v, ok := f.cells[id][src]; ok {
				out.cells[id][dst] = v
			}
		}
	}
	return out
}

// Slice returns the rows within [start, end] inclusive.
func (f Frame) Slice(start, end time.Time) Frame {
	from, to := Day(start), Day(end)
	out := NewFrame()
	out.columns = append(out.columns, f.columns...)
	for _, id := range out.columns {
		out.cells[id] = make(map[time.Time]float64)
	}
	for _, d := range f.dates {
		if d.Before(from) || d.After(to) {
			continue
		}
		out.dates = append(out.dates, d)
		for _, id := range out.columns {
			if v, ok := f.cells[id][d]; ok {
				out.cells[id][d] = v
			}
		}
	}
	return out
}

func (f Frame) clone() Frame {
	out := NewFrame()
	out.dates = append(out.dates, f.dates...)
	out.columns = append(out.columns, f.columns...)
	for id, col := range f.cells {
		c := make(map[time.Time]float64, len(col))
		for d, v := range col {
			c[d] = v
		}
		out.cells[id] = c
	}
	return out
}
