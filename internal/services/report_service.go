// Package services holds the application layer: orchestration that the CLI
// and the HTTP transport share but that belongs to neither.
package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"twmw/internal/config"
	"twmw/internal/measure"
	"twmw/internal/report"
	"twmw/internal/series"
)

// ReportService computes measures and builds reports on demand, keeping
// the most recent result for cheap re-reads.
type ReportService struct {
	engine     *measure.Engine
	cache      *measure.Cache
	profile    *measure.Profile
	logger     *slog.Logger
	freq       series.Frequency
	dateFormat string
	lookback   int
	display    int
	now        func() time.Time

	mu     sync.RWMutex
	latest *report.Report
}

// NewReportService creates a report service. The cache may be nil when the
// engine carries none.
func NewReportService(engine *measure.Engine, cache *measure.Cache, profile *measure.Profile, cfg config.ReportConfig, logger *slog.Logger) (*ReportService, error) {
	freq, err := series.ParseFrequency(cfg.Frequency)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{
		engine:     engine,
		cache:      cache,
		profile:    profile,
		logger:     logger.With(slog.String("component", "report_service")),
		freq:       freq,
		dateFormat: cfg.DateFormat,
		lookback:   cfg.LookbackYears,
		display:    cfg.DisplayPeriods,
		now:        time.Now,
	}, nil
}

// LatestReport returns the last built report, building one first if none
// exists yet.
func (s *ReportService) LatestReport(ctx context.Context) (*report.Report, error) {
	s.mu.RLock()
	latest := s.latest
	s.mu.RUnlock()
	if latest != nil {
		return latest, nil
	}
	return s.Refresh(ctx)
}

// Refresh recomputes every measure, rebuilds the report and replaces the
// kept result. The engine's frame cache is invalidated first so the run
// reads fresh source data.
func (s *ReportService) Refresh(ctx context.Context) (*report.Report, error) {
	if s.cache != nil {
		s.cache.Invalidate()
	}

	rep, _, _, err := s.Run(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.latest = rep
	s.mu.Unlock()
	return rep, nil
}

// Run performs one full pipeline pass and returns the report along with
// the aligned value and score frames, so callers can persist the frames.
func (s *ReportService) Run(ctx context.Context) (*report.Report, series.Frame, series.Frame, error) {
	end := series.Day(s.now())
	start := end.AddDate(-s.lookback, 0, 0)

	s.logger.Info("starting pipeline run",
		slog.Time("start", start),
		slog.Time("end", end),
		slog.String("frequency", string(s.freq)))

	values, err := s.engine.ComputeAll(ctx, measure.RoleValue, start, end, s.freq)
	if err != nil {
		return nil, series.NewFrame(), series.NewFrame(), err
	}
	scores, err := s.engine.ComputeAll(ctx, measure.RoleScore, start, end, s.freq)
	if err != nil {
		return nil, series.NewFrame(), series.NewFrame(), err
	}

	period := s.displayPeriod(values, start, end)
	rep, err := report.Build(values, scores, period, s.profile, report.Options{
		DateFormat: s.dateFormat,
	})
	if err != nil {
		return nil, series.NewFrame(), series.NewFrame(), err
	}

	s.logger.Info("pipeline run complete",
		slog.Int("rows", len(rep.Rows)),
		slog.Int("periods", len(rep.Dates)))
	return rep, values, scores, nil
}

// displayPeriod trims the report window to the trailing configured number
// of reporting periods present in the aligned frame. The end extends to
// the last frame date because resampled rows are stamped at period ends,
// which can fall after today.
func (s *ReportService) displayPeriod(values series.Frame, start, end time.Time) report.Period {
	dates := values.Dates()
	if len(dates) > 0 && dates[len(dates)-1].After(end) {
		end = dates[len(dates)-1]
	}
	if len(dates) > s.display {
		start = dates[len(dates)-s.display]
	}
	return report.Period{Start: start, End: end}
}
