package outlook

import (
	"database/sql"

	"github.com/lox/wayraweather/internal/models"
)

type Direction string

const (
	Up     Direction = "up"
	Down   Direction = "down"
	Stable Direction = "stable"
)

const (
	DefaultTrendWindow = 3

	trendUpper = 1.03
	trendLower = 0.97
)

// Trend compares the mean of the first window defined values against the
// mean of the last window. Fewer than 2*window defined values is Stable.
func Trend(values []sql.NullFloat64, window int) Direction {
	if window <= 0 {
		window = DefaultTrendWindow
	}

	nums := make([]float64, 0, len(values))
	for _, v := range values {
		if v.Valid {
			nums = append(nums, v.Float64)
		}
	}
	if len(nums) < max(2, 2*window) {
		return Stable
	}

	head := mean(nums[:window])
	tail := mean(nums[len(nums)-window:])
	switch {
	case tail > head*trendUpper:
		return Up
	case tail < head*trendLower:
		return Down
	default:
		return Stable
	}
}

// CompareTrends runs Trend over every metric of the reconciled series.
func CompareTrends(r Reconciled, window int) map[models.Metric]Direction {
	out := make(map[models.Metric]Direction, len(models.Metrics))
	for _, m := range models.Metrics {
		out[m] = Trend(r.Values(m), window)
	}
	return out
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
