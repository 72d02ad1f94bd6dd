package measure

import (
	"context"
	"time"

	pipeerr "twmw/internal/errors"
	"twmw/internal/series"
	"twmw/internal/source"
)

// Series keys and fields of the quote API. The field identifiers are the
// upstream's own (Chinese) column names and must match the wire exactly.
const (
	keyTAIEX = "TWA00" // 加權指數 (weighted index)
	keyOTC   = "TWC00" // OTC index

	fieldBias67 = "價格_BIAS_67D"
	fieldMACD   = "價格_MACD_12D_26D_9D"
	// MACD answers three suffixed columns: _1 DIF, _2 MACD, _3 DIF-MACD.
	colDIF  = "價格_MACD_12D_26D_9D_1"
	colMACD = "價格_MACD_12D_26D_9D_2"
	fieldPE = "本益比4"
	fieldPB = "股價淨值比"
)

// Relational query templates for the macro series kept in the warehouse
// rather than the quote API. Monthly grain, one row per period.
const (
	macroSeriesQuery = `SELECT 年月, value FROM macro_monthly
WHERE series_code = :series_code AND 年月 BETWEEN :start AND :end
ORDER BY 年月`

	codeLeadingIndicator = "TW_LEADING"
	codeM1BM2Spread      = "TW_M1B_M2"
)

// Score ladders. One authoritative table per measure; where historical
// revisions of the formulas disagreed, the ladder recorded here wins.
var (
	// biasLadder grades the 67-day bias of an index: deep positive bias is
	// overheated but still trending, deep negative bias loses the point.
	biasLadder = Ladder{
		Direction: GreaterIsBetter,
		Rungs:     []Rung{{Threshold: 2.72, Score: 4}, {Threshold: -2.68, Score: 3}},
	}

	// valuationLadder grades cost-type ratios (P/E, P/B): cheaper is better.
	peLadder = Ladder{
		Direction: LessIsBetter,
		Rungs:     []Rung{{Threshold: 15, Score: 2}, {Threshold: 20, Score: 1}},
	}
	pbLadder = Ladder{
		Direction: LessIsBetter,
		Rungs:     []Rung{{Threshold: 1.5, Score: 2}, {Threshold: 2.0, Score: 1}},
	}

	// macroLadder grades month-over-month macro levels around their neutral
	// zero line with a bonus band for strong readings.
	macroLadder = Ladder{
		Direction: GreaterIsBetter,
		Rungs:     []Rung{{Threshold: 1.0, Score: 2}, {Threshold: 0, Score: 1}},
	}
)

// Computers owns the shared source adapters and provides every computer
// implementation the registry exposes. One instance serves both roles;
// score computers are composed from value computers and a ladder.
type Computers struct {
	api *source.Client
	db  *source.DB
}

// NewComputers creates the computer surface over the given adapters. db may
// be nil when no relational source is configured; the DB-backed measures
// then fail with a ConnectivityError and bulk computation skips them.
func NewComputers(api *source.Client, db *source.DB) *Computers {
	return &Computers{api: api, db: db}
}

// Install registers every computer under its profile-visible name.
func (c *Computers) Install(r *Registry) error {
	values := map[string]ComputerFunc{
		"fetch_taiex_bias":        c.apiValue(keyTAIEX, fieldBias67, fieldBias67),
		"fetch_otc_bias":          c.apiValue(keyOTC, fieldBias67, fieldBias67),
		"fetch_taiex_macd":        c.apiValue(keyTAIEX, fieldMACD, colMACD),
		"fetch_otc_macd":          c.apiValue(keyOTC, fieldMACD, colMACD),
		"fetch_taiex_dif":         c.apiValue(keyTAIEX, fieldMACD, colDIF),
		"fetch_taiex_pe":          c.apiValue(keyTAIEX, fieldPE, fieldPE),
		"fetch_otc_pe":            c.apiValue(keyOTC, fieldPE, fieldPE),
		"fetch_taiex_pb":          c.apiValue(keyTAIEX, fieldPB, fieldPB),
		"fetch_otc_pb":            c.apiValue(keyOTC, fieldPB, fieldPB),
		"fetch_leading_indicator": c.dbValue(codeLeadingIndicator),
		"fetch_m1b_m2_spread":     c.dbValue(codeM1BM2Spread),
	}
	scores := map[string]ComputerFunc{
		"calc_score_taiex_bias":        scored(values["fetch_taiex_bias"], biasLadder),
		"calc_score_otc_bias":          scored(values["fetch_otc_bias"], biasLadder),
		"calc_score_taiex_macd":        scored(values["fetch_taiex_macd"], binaryAboveZero),
		"calc_score_otc_macd":          scored(values["fetch_otc_macd"], binaryAboveZero),
		"calc_score_taiex_dif":         scored(values["fetch_taiex_dif"], binaryAboveZero),
		"calc_score_taiex_pe":          scored(values["fetch_taiex_pe"], peLadder),
		"calc_score_otc_pe":            scored(values["fetch_otc_pe"], peLadder),
		"calc_score_taiex_pb":          scored(values["fetch_taiex_pb"], pbLadder),
		"calc_score_otc_pb":            scored(values["fetch_otc_pb"], pbLadder),
		"calc_score_leading_indicator": scored(values["fetch_leading_indicator"], macroLadder),
		"calc_score_m1b_m2_spread":     scored(values["fetch_m1b_m2_spread"], macroLadder),
	}

	for name, fn := range values {
		if err := r.RegisterValue(name, fn); err != nil {
			return err
		}
	}
	for name, fn := range scores {
		if err := r.RegisterScore(name, fn); err != nil {
			return err
		}
	}
	return nil
}

// apiValue builds a value computer bound to one quote API call. An empty
// fetch is an EmptyResultError; whether that is fatal is the caller's call.
func (c *Computers) apiValue(seriesKey, field, extract string) ComputerFunc {
	return func(ctx context.Context, start, end time.Time) (series.TimeSeries, error) {
		s, err := c.api.FetchField(ctx, seriesKey, field, extract, start, end)
		if err != nil {
			return s, err
		}
		if s.Empty() {
			return s, pipeerr.EmptyResult(seriesKey + "/" + extract)
		}
		return s, nil
	}
}

// dbValue builds a value computer bound to one warehouse query.
func (c *Computers) dbValue(seriesCode string) ComputerFunc {
	return func(ctx context.Context, start, end time.Time) (series.TimeSeries, error) {
		if c.db == nil {
			return series.New(), pipeerr.Connectivity(nil, "no database configured for series %q", seriesCode)
		}
		params := map[string]any{
			"series_code": seriesCode,
			"start":       series.Day(start).Format("2006-01-02"),
			"end":         series.Day(end).Format("2006-01-02"),
		}
		s, err := c.db.FetchSeries(ctx, "value", macroSeriesQuery, params)
		if err != nil {
			return s, err
		}
		if s.Empty() {
			return s, pipeerr.EmptyResult(seriesCode)
		}
		return s, nil
	}
}

// scored composes a value computer with a ladder.
func scored(value ComputerFunc, ladder Ladder) ComputerFunc {
	return func(ctx context.Context, start, end time.Time) (series.TimeSeries, error) {
		s, err := value(ctx, start, end)
		if err != nil {
			return s, err
		}
		return ladder.Score(s), nil
	}
}
