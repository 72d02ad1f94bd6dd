// Package source fetches single-field time series from the two supported
// backends: the remote query-by-parameters quote API and a parameterized
// relational query. Adapters are stateless; retries are a caller concern.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"twmw/internal/config"
	pipeerr "twmw/internal/errors"
	"twmw/internal/series"
)

// Client fetches series from the remote indicator API.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
	logger  *slog.Logger
}

// NewClient creates an API client from configuration.
func NewClient(cfg config.APIConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.Key,
		httpc:   &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

// envelope is the wire format of the quote API.
type envelope struct {
	Status string `json:"status"`
	Data   map[string]struct {
		Data []map[string]any `json:"data"`
	} `json:"data"`
}

// FetchSeries issues one query for a single field of a series key over
// [start, end] and returns the date-indexed result. A non-success status in
// the response body is an UpstreamError; a transport failure is a
// ConnectivityError. An empty result is a valid empty series.
func (c *Client) FetchSeries(ctx context.Context, seriesKey, field string, start, end time.Time) (series.TimeSeries, error) {
	return c.FetchField(ctx, seriesKey, field, field, start, end)
}

// FetchField is FetchSeries for fields whose response column differs from
// the requested field. Multi-column indicators (MACD) are requested under
// one field name but answered as several suffixed columns; extract names
// the column to keep.
func (c *Client) FetchField(ctx context.Context, seriesKey, field, extract string, start, end time.Time) (series.TimeSeries, error) {
	if start.After(end) {
		return series.New(), fmt.Errorf("start %s is after end %s", start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	params := url.Values{}
	params.Set("stock_id", seriesKey)
	params.Set("start", series.Day(start).Format("2006-01-02"))
	params.Set("end", series.Day(end).Format("2006-01-02"))
	params.Set("fields", field)
	params.Set("format", "json")
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return series.New(), fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return series.New(), pipeerr.Connectivity(err, "API request for %s/%s failed", seriesKey, field)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return series.New(), pipeerr.Connectivity(nil, "API request for %s/%s returned HTTP %d", seriesKey, field, resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return series.New(), pipeerr.Schema("failed to decode API response for %s/%s: %v", seriesKey, field, err)
	}
	if env.Status != "success" {
		return series.New(), pipeerr.Upstream(env.Status)
	}

	records := env.Data[seriesKey].Data
	c.logger.Debug("fetched series from API",
		slog.String("series_key", seriesKey),
		slog.String("field", field),
		slog.Int("record_count", len(records)))

	if len(records) == 0 {
		return series.New(), nil
	}
	return recordsToSeries(records, extract)
}

// recordsToSeries converts wire records into a series for one field.
// Records missing the field or carrying a null value are skipped.
func recordsToSeries(records []map[string]any, field string) (series.TimeSeries, error) {
	dateCol, err := detectDateColumn(columnsOf(records[0]))
	if err != nil {
		return series.New(), err
	}

	s := series.New()
	for _, rec := range records {
		raw, ok := rec[dateCol]
		if !ok {
			continue
		}
		dateStr, ok := raw.(string)
		if !ok {
			continue
		}
		date, ok := parseDate(dateStr)
		if !ok {
			continue
		}
		value, ok := numericValue(rec[field])
		if !ok {
			continue
		}
		s.Set(date, value)
	}
	return s, nil
}

func columnsOf(record map[string]any) []string {
	cols := make([]string, 0, len(record))
	for k := range record {
		cols = append(cols, k)
	}
	return cols
}

// numericValue coerces a JSON cell into a float64. Strings are accepted
// because some feeds quote their numbers.
func numericValue(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		var f float64
		if _, err := fmt.Sscanf(x, "%g", &f); err == nil {
			return f, true
		}
	}
	return 0, false
}
