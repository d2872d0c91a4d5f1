package history

import (
	"context"
	"fmt"
	"time"

	"github.com/lox/wayraweather/internal/metrics"
	"github.com/lox/wayraweather/internal/models"
)

const (
	HotThreshold   = 32.0 // °C, at or above
	ColdThreshold  = 12.0 // °C, at or below
	WindyThreshold = 8.0  // m/s, at or above
	HumidThreshold = 80.0 // %, at or above

	UncomfortableTemp     = 30.0
	UncomfortableHumidity = 75.0
)

var uncomfortableRule = fmt.Sprintf("temperature >= %gC and humidity >= %g%%", UncomfortableTemp, UncomfortableHumidity)

// frequency counts the samples where pick reports a value, and how many of
// those satisfy hit.
func frequency(samples []models.HistoricalSample, pick func(models.DailyRecord) bool, hit func(models.DailyRecord) bool) (*float64, int) {
	var n, hits int
	for _, s := range samples {
		if !pick(s.DailyRecord) {
			continue
		}
		n++
		if hit(s.DailyRecord) {
			hits++
		}
	}
	if n == 0 {
		return nil, 0
	}
	p := float64(hits) / float64(n)
	return &p, n
}

func metric(samples []models.HistoricalSample, threshold float64, pick, hit func(models.DailyRecord) bool) models.ProbabilityMetric {
	p, n := frequency(samples, pick, hit)
	return models.ProbabilityMetric{Probability: p, SampleSize: n, Threshold: threshold}
}

// Estimate turns pooled samples into threshold-crossing frequencies. Each
// metric counts only the samples where it is present; the joint discomfort
// rule counts only samples with both temperature and humidity. A nil result
// means there was no history at all.
func Estimate(samples []models.HistoricalSample) *models.Probabilities {
	if len(samples) == 0 {
		return nil
	}

	hasTemp := func(r models.DailyRecord) bool { return r.Temperature.Valid }
	hasHumidity := func(r models.DailyRecord) bool { return r.Humidity.Valid }
	hasWind := func(r models.DailyRecord) bool { return r.Wind.Valid }

	out := &models.Probabilities{
		VeryHot: metric(samples, HotThreshold, hasTemp, func(r models.DailyRecord) bool {
			return r.Temperature.Float64 >= HotThreshold
		}),
		VeryCold: metric(samples, ColdThreshold, hasTemp, func(r models.DailyRecord) bool {
			return r.Temperature.Float64 <= ColdThreshold
		}),
		VeryWindy: metric(samples, WindyThreshold, hasWind, func(r models.DailyRecord) bool {
			return r.Wind.Float64 >= WindyThreshold
		}),
		VeryHumid: metric(samples, HumidThreshold, hasHumidity, func(r models.DailyRecord) bool {
			return r.Humidity.Float64 >= HumidThreshold
		}),
		VeryUncomfortable: metric(samples, UncomfortableTemp,
			func(r models.DailyRecord) bool { return r.Temperature.Valid && r.Humidity.Valid },
			func(r models.DailyRecord) bool {
				return r.Temperature.Float64 >= UncomfortableTemp && r.Humidity.Float64 >= UncomfortableHumidity
			}),
	}
	out.VeryUncomfortable.Rule = uncomfortableRule
	return out
}

// Compute samples the archive and estimates probabilities for target. A nil
// result with a nil error means no usable history.
func Compute(ctx context.Context, s *Sampler, lat, lon float64, target time.Time) (*models.Probabilities, error) {
	samples, err := s.Sample(ctx, lat, lon, target)
	if err != nil {
		return nil, fmt.Errorf("sample history: %w", err)
	}
	metrics.HistoricalSamples.Observe(float64(len(samples)))
	return Estimate(samples), nil
}
