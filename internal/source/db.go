package source

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	pipeerr "twmw/internal/errors"
	"twmw/internal/series"
)

// DB fetches series from the relational data source. The caller supplies a
// live *sql.DB; the adapter issues one read-only parameterized query per
// fetch and holds no state of its own.
type DB struct {
	conn   *sql.DB
	logger *slog.Logger
}

// NewDB wraps a live database handle.
func NewDB(conn *sql.DB, logger *slog.Logger) *DB {
	if logger == nil {
		logger = slog.Default()
	}
	return &DB{conn: conn, logger: logger}
}

// namedParamPattern matches :name bind parameters in a query template.
var namedParamPattern = regexp.MustCompile(`:([A-Za-z_][A-Za-z0-9_]*)`)

// expandNamedParams rewrites :name placeholders to driver ? placeholders
// and returns the arguments in appearance order. A referenced name missing
// from params is an error; unused params are ignored.
func expandNamedParams(query string, params map[string]any) (string, []any, error) {
	var args []any
	var missing string
	expanded := namedParamPattern.ReplaceAllStringFunc(query, func(m string) string {
		name := m[1:]
		v, ok := params[name]
		if !ok {
			missing = name
			return m
		}
		args = append(args, v)
		return "?"
	})
	if missing != "" {
		return "", nil, fmt.Errorf("query references bind parameter :%s but none was supplied", missing)
	}
	return expanded, args, nil
}

// FetchSeries runs the query template with the named parameters and returns
// the named field as a date-indexed series. An empty result set is a valid
// empty series, not an error.
func (d *DB) FetchSeries(ctx context.Context, field, query string, params map[string]any) (series.TimeSeries, error) {
	expanded, args, err := expandNamedParams(query, params)
	if err != nil {
		return series.New(), err
	}

	rows, err := d.conn.QueryContext(ctx, expanded, args...)
	if err != nil {
		return series.New(), pipeerr.Connectivity(err, "database query for field %q failed", field)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return series.New(), pipeerr.Connectivity(err, "failed to read result columns for field %q", field)
	}
	dateCol, err := detectDateColumn(columns)
	if err != nil {
		return series.New(), err
	}

	dateIdx, fieldIdx := -1, -1
	for i, c := range columns {
		switch c {
		case dateCol:
			dateIdx = i
		case field:
			fieldIdx = i
		}
	}
	if fieldIdx < 0 {
		return series.New(), pipeerr.Schema("field %q absent from result columns", field)
	}

	s := series.New()
	count := 0
	for rows.Next() {
		cells := make([]any, len(columns))
		for i := range cells {
			cells[i] = new(any)
		}
		if err := rows.Scan(cells...); err != nil {
			return series.New(), pipeerr.Connectivity(err, "failed to scan row for field %q", field)
		}

		date, ok := scanDate(*(cells[dateIdx].(*any)))
		if !ok {
			continue
		}
		value, ok := scanFloat(*(cells[fieldIdx].(*any)))
		if !ok {
			continue
		}
		s.Set(date, value)
		count++
	}
	if err := rows.Err(); err != nil {
		return series.New(), pipeerr.Connectivity(err, "row iteration for field %q failed", field)
	}

	d.logger.Debug("fetched series from database",
		slog.String("field", field),
		slog.Int("record_count", count))

	return s, nil
}

func scanDate(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return series.Day(x), true
	case []byte:
		return parseDate(string(x))
	case string:
		return parseDate(x)
	}
	return time.Time{}, false
}

func scanFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), true
	case []byte:
		var f float64
		if _, err := fmt.Sscanf(string(x), "%g", &f); err == nil {
			return f, true
		}
	case string:
		var f float64
		if _, err := fmt.Sscanf(x, "%g", &f); err == nil {
			return f, true
		}
	}
	return 0, false
}
