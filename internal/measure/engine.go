package measure

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"twmw/internal/series"
)

// Engine runs measure computers in bulk and aligns their output into one
// periodic frame. Bulk computation is best-effort: a failing measure is
// logged and excluded, never fatal for the run. Single-measure computation
// surfaces every error.
type Engine struct {
	registry *Registry
	logger   *slog.Logger
	workers  int
	cache    *Cache
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers sets the bound of the per-measure worker pool. Computers are
// pure and adapters stateless, so parallel fetches are safe; results are
// merged keyed by measure id, so the output does not depend on completion
// order. The default of 1 keeps fetches sequential.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithCache attaches an explicit result cache. There is no global cache;
// invalidation is an explicit call on the cache object.
func WithCache(c *Cache) Option {
	return func(e *Engine) {
		e.cache = c
	}
}

// NewEngine creates an engine over a bound registry.
func NewEngine(registry *Registry, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		registry: registry,
		logger:   logger,
		workers:  1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ComputeOne computes a single measure for a role. All errors surface to
// the caller; nothing is silently dropped.
func (e *Engine) ComputeOne(ctx context.Context, measureID string, role Role, start, end time.Time) (series.TimeSeries, error) {
	fn, err := e.registry.Resolve(measureID, role)
	if err != nil {
		return series.New(), err
	}
	return fn(ctx, start, end)
}

// ComputeAll computes every measure that declares a computer for the role,
// outer-joins the surviving series on date, forward-fills gaps, and
// resamples to the reporting frequency keeping the last observation of
// each period, timestamped at the period end.
//
// Re-running with identical arguments over static data yields identical
// output: the merge is keyed by measure id and row order is always
// ascending by date.
func (e *Engine) ComputeAll(ctx context.Context, role Role, start, end time.Time, freq series.Frequency) (series.Frame, error) {
	if e.cache != nil {
		if f, ok := e.cache.Get(role, start, end, freq); ok {
			return f, nil
		}
	}

	profile := e.registry.Profile()
	if profile == nil || profile.Len() == 0 {
		return series.NewFrame(), nil
	}

	var (
		mu      sync.Mutex
		results = make(map[string]series.TimeSeries)
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for _, id := range profile.IDs() {
		def, _ := profile.Get(id)
		if def.FuncFor(role) == "" {
			// Measure does not participate in this role.
			continue
		}

		id := id
		g.Go(func() error {
			e.logger.Info("computing measure",
				slog.String("measure_id", id),
				slog.String("role", string(role)))

			s, err := e.ComputeOne(gctx, id, role, start, end)
			if err != nil {
				// Bulk computation must not abort on one measure's failure.
				e.logger.Warn("measure computation failed, excluding from result",
					slog.String("measure_id", id),
					slog.String("role", string(role)),
					slog.String("error", err.Error()))
				return nil
			}

			mu.Lock()
			results[id] = s
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return series.NewFrame(), err
	}
	if len(results) == 0 {
		return series.NewFrame(), nil
	}

	frame := series.OuterJoin(results).ForwardFill().Resample(freq)

	if e.cache != nil {
		e.cache.Put(role, start, end, freq, frame)
	}
	return frame, nil
}
