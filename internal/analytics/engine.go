package analytics

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/acmecorp/campaign-pulse/internal/metrics"
	"github.com/acmecorp/campaign-pulse/internal/models"
)

// Config tunes the derived-metric policies.
type Config struct {
	// PacingTolerancePct is the half-width, in percentage points, of
	// the on-pace band around the elapsed fraction.
	PacingTolerancePct float64
	// PublisherCostRate is the fraction of sell-side revenue paid out
	// to publishers.
	PublisherCostRate float64
	// Invoice payment terms, in days from end of billed month.
	ReceivableTermsDays int
	PayableTermsDays    int
}

// DefaultConfig returns the standard policy: a 5 point pacing band,
// 75% publisher revenue share, net-45 receivables and net-30 payables.
func DefaultConfig() Config {
	return Config{
		PacingTolerancePct:  5,
		PublisherCostRate:   0.75,
		ReceivableTermsDays: 45,
		PayableTermsDays:    30,
	}
}

// Engine computes analytics reports over dataset snapshots.  Compute
// is pure given a dataset, filter and clock, so results are cacheable
// by (dataset, filter).
type Engine struct {
	cfg     Config
	cache   ReportCache
	metrics *metrics.Metrics

	// Now supplies the as-of clock for pacing and invoice aging.
	Now func() time.Time
}

func NewEngine(cfg Config, cache ReportCache, m *metrics.Metrics) *Engine {
	return &Engine{
		cfg:     cfg,
		cache:   cache,
		metrics: m,
		Now:     time.Now,
	}
}

// Invalidate drops the cached reports of a dataset.  Called after the
// dataset is regenerated.
func (e *Engine) Invalidate(ctx context.Context, datasetID string) {
	if e.cache != nil {
		e.cache.Invalidate(ctx, datasetID)
	}
}

// Compute returns the full report for one dataset and filter, serving
// from the cache when possible.  The report sections are independent
// aggregations over the same filtered view, so they run concurrently.
func (e *Engine) Compute(ctx context.Context, ds *models.Dataset, f Filter) (*Report, error) {
	if e.cache != nil {
		if rep, ok := e.cache.Get(ctx, ds.ID, f.Key()); ok {
			if e.metrics != nil {
				e.metrics.RecordCacheHit(true)
			}
			return rep, nil
		}
		if e.metrics != nil {
			e.metrics.RecordCacheHit(false)
		}
	}

	v := newView(ds, f)
	asOf := e.Now().UTC()
	rep := &Report{
		DatasetID: ds.ID,
		AsOf:      asOf,
		Filter:    f,
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(e.section("summary", func() {
		rep.Summary = summarize(v)
		rep.Campaigns = campaignPerformance(v)
	}))
	g.Go(e.section("timeseries", func() {
		rep.Daily = trend(v, bucketDay)
		rep.Weekly = trend(v, bucketWeek)
		rep.Monthly = trend(v, bucketMonth)
	}))
	g.Go(e.section("breakdowns", func() {
		rep.Breakdowns = breakdowns(v)
	}))
	g.Go(e.section("pacing", func() {
		rep.Pacing = e.pacing(v, asOf)
		rep.Margin = e.margin(v)
	}))
	g.Go(e.section("cashflow", func() {
		rep.CashFlow = e.cashFlow(v, asOf)
	}))
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if e.cache != nil {
		e.cache.Put(ctx, ds.ID, f.Key(), rep)
	}
	return rep, nil
}

func (e *Engine) section(name string, fn func()) func() error {
	return func() error {
		start := time.Now()
		fn()
		if e.metrics != nil {
			e.metrics.RecordComputeSection(name, time.Since(start))
		}
		return nil
	}
}
