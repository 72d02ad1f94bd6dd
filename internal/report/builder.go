// Package report shapes aligned value and score frames into ordered,
// categorized report rows. The profile is authoritative for display
// metadata: a frame column with no profile entry is dropped.
package report

import (
	"sort"
	"time"

	"twmw/internal/measure"
	"twmw/internal/series"
)

// Uncategorized is the sentinel category for measures with no grouping.
// It sorts after every declared category.
const Uncategorized = "Uncategorized"

// undeclaredOrder sorts anything not declared after everything that is.
const undeclaredOrder = 1 << 30

// Period is the inclusive display window of a report.
type Period struct {
	Start time.Time
	End   time.Time
}

// Row is one reported measure.
type Row struct {
	MeasureID   string             `json:"measure_id"`
	Category    string             `json:"category"`
	MeasureName string             `json:"measure_name"`
	Unit        string             `json:"unit"`
	Values      map[string]float64 `json:"values"` // formatted date -> value; absent dates missing
	Score       float64            `json:"score"`
	ScoreTotal  float64            `json:"score_total"`
}

// Report is an ordered row set plus the chronological date labels shared by
// every row.
type Report struct {
	Dates []string `json:"dates"`
	Rows  []Row    `json:"rows"`
}

// Category is one entry of an externally supplied category layout: a name
// and the measure ids it contains, both in display order.
type Category struct {
	Name       string
	MeasureIDs []string
}

// Options adjusts report building.
type Options struct {
	// Categories, when non-nil, replaces the profile's own category field
	// as the source of category membership and ordering.
	Categories []Category
	// DateFormat formats the date column labels. Default "2006-01-02".
	DateFormat string
}

// Build filters both frames to the period and emits one row per measure
// column that survives the filter and is declared in the profile. The row
// carries the full value history within the period and the latest score
// observed in it (0 if the measure has no score data). score_total is the
// sum of scores within a category, broadcast onto each of its rows. An
// empty input frame yields an empty report.
func Build(values, scores series.Frame, period Period, profile *measure.Profile, opts Options) (*Report, error) {
	dateFormat := opts.DateFormat
	if dateFormat == "" {
		dateFormat = "2006-01-02"
	}

	vf := values.Slice(period.Start, period.End)
	sf := scores.Slice(period.Start, period.End)

	rep := &Report{}
	if vf.Empty() {
		return rep, nil
	}

	for _, d := range vf.Dates() {
		rep.Dates = append(rep.Dates, d.Format(dateFormat))
	}

	catOrder, measOrder := ordering(profile, opts.Categories)
	membership := categoryMembership(opts.Categories)

	type sortableRow struct {
		row       Row
		catRank   int
		measRank  int
		origIndex int
	}
	var rows []sortableRow

	for i, id := range vf.Columns() {
		def, ok := profile.Get(id)
		if !ok {
			continue
		}

		category := def.Category
		if opts.Categories != nil {
			category = membership[id]
		}
		if category == "" {
			category = Uncategorized
		}

		row := Row{
			MeasureID:   id,
			Category:    category,
			MeasureName: def.Name,
			Unit:        def.Unit,
			Values:      make(map[string]float64),
		}
		for _, d := range vf.Dates() {
			if v, ok := vf.Value(id, d); ok {
				row.Values[d.Format(dateFormat)] = v
			}
		}
		if score, ok := sf.LastValue(id); ok {
			row.Score = score
		}

		rows = append(rows, sortableRow{
			row:       row,
			catRank:   rankOf(catOrder, category),
			measRank:  rankOf(measOrder, id),
			origIndex: i,
		})
	}

	// score_total is derived: the sum of scores per category, recomputed
	// here from the rows it aggregates, never stored independently.
	totals := make(map[string]float64)
	for _, r := range rows {
		totals[r.row.Category] += r.row.Score
	}
	for i := range rows {
		rows[i].row.ScoreTotal = totals[rows[i].row.Category]
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].catRank != rows[j].catRank {
			return rows[i].catRank < rows[j].catRank
		}
		if rows[i].measRank != rows[j].measRank {
			return rows[i].measRank < rows[j].measRank
		}
		return rows[i].origIndex < rows[j].origIndex
	})

	for _, r := range rows {
		rep.Rows = append(rep.Rows, r.row)
	}
	return rep, nil
}

// ordering derives the category and measure total orders from either the
// external category layout or the profile's declaration order.
func ordering(profile *measure.Profile, categories []Category) (catOrder, measOrder map[string]int) {
	catOrder = make(map[string]int)
	measOrder = make(map[string]int)

	if categories != nil {
		for ci, cat := range categories {
			catOrder[cat.Name] = ci
			for mi, id := range cat.MeasureIDs {
				measOrder[id] = mi
			}
		}
		return catOrder, measOrder
	}

	next := 0
	for i, id := range profile.IDs() {
		measOrder[id] = i
		def, _ := profile.Get(id)
		if def.Category == "" {
			// Sentinel category stays unranked so it sorts last.
			continue
		}
		if _, seen := catOrder[def.Category]; !seen {
			catOrder[def.Category] = next
			next++
		}
	}
	return catOrder, measOrder
}

// categoryMembership inverts an external category layout to id -> name.
func categoryMembership(categories []Category) map[string]string {
	m := make(map[string]string)
	for _, cat := range categories {
		for _, id := range cat.MeasureIDs {
			m[id] = cat.Name
		}
	}
	return m
}

func rankOf(order map[string]int, key string) int {
	if r, ok := order[key]; ok {
		return r
	}
	return undeclaredOrder
}
