package history

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lox/wayraweather/internal/ingest"
	"github.com/lox/wayraweather/internal/metrics"
	"github.com/lox/wayraweather/internal/models"
)

const DefaultConcurrency = 6

// Sampler gathers same-season windows from the archive for every year in
// [FirstYear, LastYear].
type Sampler struct {
	source      ingest.DailySource
	concurrency int
}

func NewSampler(source ingest.DailySource, concurrency int) *Sampler {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Sampler{source: source, concurrency: concurrency}
}

// Sample fetches one window per year concurrently. A year whose fetch fails
// is logged and left out; the pool is only returned once every year has
// settled. The only error is ctx's.
func (s *Sampler) Sample(ctx context.Context, lat, lon float64, target time.Time) ([]models.HistoricalSample, error) {
	var (
		mu      sync.Mutex
		samples []models.HistoricalSample
		g       errgroup.Group
	)
	g.SetLimit(s.concurrency)

	for year := FirstYear; year <= LastYear; year++ {
		start, end, ok := Window(AnchorDate(target, year))
		if !ok {
			continue
		}

		g.Go(func() error {
			series, err := s.source.FetchDailySeries(ctx, lat, lon, start, end)
			if err != nil {
				log.Printf("sampler: year %d fetch failed: %v", year, err)
				metrics.HistoricalYearsFailed.Inc()
				return nil
			}
			if series == nil {
				return nil
			}

			batch := make([]models.HistoricalSample, 0, len(series.Records))
			for _, rec := range series.Records {
				if rec.Date.Before(start) || rec.Date.After(end) {
					continue
				}
				batch = append(batch, models.HistoricalSample{Year: year, DailyRecord: rec})
			}

			mu.Lock()
			samples = append(samples, batch...)
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return samples, nil
}
