package outlook

import (
	"database/sql"
	"testing"

	"github.com/lox/wayraweather/internal/models"
)

func series(vals ...float64) []sql.NullFloat64 {
	out := make([]sql.NullFloat64, len(vals))
	for i, v := range vals {
		if v == gap {
			continue
		}
		out[i] = models.Float(v)
	}
	return out
}

// gap marks an absent reading in series literals.
const gap = -1e9

func TestTrend(t *testing.T) {
	tests := []struct {
		name   string
		values []sql.NullFloat64
		window int
		want   Direction
	}{
		{"rising", series(10, 10, 10, 20, 20, 20), 3, Up},
		{"falling", series(20, 20, 20, 10, 10, 10), 3, Down},
		{"flat", series(10, 10, 10, 10, 10, 10), 3, Stable},
		{"within 3 percent", series(100, 100, 100, 102, 102, 102), 3, Stable},
		{"five values is too few", series(1, 1, 1, 50, 50), 3, Stable},
		{"gaps do not count", series(10, gap, 10, gap, 10, 20, gap, 20), 3, Stable},
		{"gaps skipped", series(10, gap, 10, 10, gap, 20, 20, 20), 3, Up},
		{"middle ignored", series(10, 10, 10, 0, 0, 0, 0, 20, 20, 20), 3, Up},
		{"default window", series(10, 10, 10, 20, 20, 20), 0, Up},
		{"window of one", series(5, 9), 1, Up},
		{"empty", nil, 3, Stable},
		{"all absent", series(gap, gap, gap, gap, gap, gap), 3, Stable},
		{"zero precipitation is a reading", series(0, 0, 0, 4, 4, 4), 3, Up},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Trend(tt.values, tt.window); got != tt.want {
				t.Errorf("Trend() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompareTrends(t *testing.T) {
	target := date("2025-06-15")
	recs := make([]models.DailyRecord, 0, 21)
	for i, d := range Timeline(target) {
		recs = append(recs, models.DailyRecord{
			Date:        d,
			Temperature: models.Float(10 + float64(i)),
			Humidity:    models.Float(90 - float64(i)),
			Wind:        models.Float(3),
		})
	}
	r := Merge(target, FromSeries(&models.DailySeries{Source: "nasa_power", Records: recs}))

	got := CompareTrends(r, DefaultTrendWindow)
	want := map[models.Metric]Direction{
		models.MetricTemperature:   Up,
		models.MetricHumidity:      Down,
		models.MetricWind:          Stable,
		models.MetricPrecipitation: Stable,
	}
	for m, w := range want {
		if got[m] != w {
			t.Errorf("%s = %q, want %q", m, got[m], w)
		}
	}
}
