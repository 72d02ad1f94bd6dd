package source

import (
	"strings"
	"time"

	pipeerr "twmw/internal/errors"
	"twmw/internal/series"
)

// dateColumnAliases is the ordered list of column names recognized as the
// date index of a fetched table. The first match wins. The upstream feeds
// label their date columns inconsistently (including the Chinese headers of
// the quote API), so the scan is by exact name, in priority order.
var dateColumnAliases = []string{
	"日期", "年月",
	"date", "Date",
	"datetime", "Datetime",
	"time", "Time",
	"trading_date", "TradingDate",
}

// detectDateColumn returns the first known date-like column present in
// columns, or a SchemaError if none match.
func detectDateColumn(columns []string) (string, error) {
	present := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		present[strings.TrimSpace(c)] = struct{}{}
	}
	for _, alias := range dateColumnAliases {
		if _, ok := present[alias]; ok {
			return alias, nil
		}
	}
	return "", pipeerr.Schema("no date-like column found (columns: %s)", strings.Join(columns, ", "))
}

// dateLayouts are the wire formats dates arrive in.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01",
	"200601",
}

// parseDate parses a wire date and normalizes it to day precision.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return series.Day(t), true
		}
	}
	return time.Time{}, false
}
