package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/lox/wayraweather/internal/metrics"
	"github.com/lox/wayraweather/internal/models"
)

const (
	SourceNASAPower = "nasa_power"
	SourceOpenMeteo = "open_meteo"
	SourceWAQI      = "waqi"
)

var (
	ErrUpstream    = errors.New("upstream error")
	ErrCircuitOpen = errors.New("circuit breaker open")
)

// DailySource returns a provider's daily series for [start, end].
type DailySource interface {
	FetchDailySeries(ctx context.Context, lat, lon float64, start, end time.Time) (*models.DailySeries, error)
}

// ShortRangeSource returns raw short-range days (extremes and gusts).
type ShortRangeSource interface {
	FetchShortRange(ctx context.Context, lat, lon float64, start, end time.Time) ([]models.ShortRangeDay, error)
}

type HourlySource interface {
	FetchHourly(ctx context.Context, lat, lon float64, date time.Time) ([]models.HourlyRecord, error)
}

type AirQualitySource interface {
	FetchAirQuality(ctx context.Context, lat, lon float64) (*models.AirQuality, error)
}

// fillSentinels are the "no data" markers providers put in place of readings.
var fillSentinels = map[int]bool{-999: true, -9999: true, -99: true}

// cleanValue maps a raw provider value to an optional reading.
func cleanValue(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	f := *v
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return sql.NullFloat64{}
	}
	if fillSentinels[int(f)] || f <= -900 {
		return sql.NullFloat64{}
	}
	return models.Float(f)
}

// fetcher performs GET requests for one provider, optionally behind a
// circuit breaker. An open breaker fails the call immediately; nothing is
// retried.
type fetcher struct {
	source  string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

func newFetcher(source string, client *http.Client) fetcher {
	return fetcher{
		source: source,
		client: client,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        source,
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			IsSuccessful: breakerSuccess,
		}),
	}
}

// breakerSuccess keeps caller cancellations from counting against the
// provider.
func breakerSuccess(err error) bool {
	return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// unguarded returns a fetcher sharing f's client but with no breaker.
func (f fetcher) unguarded() fetcher {
	return fetcher{source: f.source, client: f.client}
}

func (f fetcher) get(ctx context.Context, endpoint, url string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	var (
		body []byte
		err  error
	)
	if f.breaker == nil {
		body, err = f.do(ctx, endpoint, url)
	} else {
		var result interface{}
		result, err = f.breaker.Execute(func() (interface{}, error) {
			return f.do(ctx, endpoint, url)
		})
		if err == nil {
			body = result.([]byte)
		}
	}

	metrics.ProviderLatency.WithLabelValues(f.source, endpoint).Observe(time.Since(start).Seconds())
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.ProviderCallsTotal.WithLabelValues(f.source, endpoint, status).Inc()

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %s: %v", ErrCircuitOpen, f.source, err)
	}
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (f fetcher) do(ctx context.Context, endpoint, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s status %d: %s", ErrUpstream, endpoint, resp.StatusCode, truncate(body, 200))
	}
	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
