package outlook

import (
	"database/sql"
	"math"
	"testing"
	"time"

	"github.com/lox/wayraweather/internal/models"
)

func date(s string) time.Time {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestTimeline(t *testing.T) {
	tests := []struct {
		target    string
		wantFirst string
		wantLast  string
	}{
		{"2025-10-15", "2025-10-05", "2025-10-25"},
		{"2025-01-03", "2024-12-24", "2025-01-13"},
		{"2024-02-29", "2024-02-19", "2024-03-10"},
		{"2023-02-25", "2023-02-15", "2023-03-07"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			dates := Timeline(date(tt.target).Add(15 * time.Hour))
			if len(dates) != 21 {
				t.Fatalf("len = %d, want 21", len(dates))
			}
			if got := models.DateKey(dates[0]); got != tt.wantFirst {
				t.Errorf("first = %s, want %s", got, tt.wantFirst)
			}
			if got := models.DateKey(dates[20]); got != tt.wantLast {
				t.Errorf("last = %s, want %s", got, tt.wantLast)
			}
			seen := make(map[string]bool)
			for i := 1; i < len(dates); i++ {
				if got := dates[i].Sub(dates[i-1]); got != 24*time.Hour {
					t.Errorf("step %d = %v, want 24h", i, got)
				}
				key := models.DateKey(dates[i])
				if seen[key] {
					t.Errorf("duplicate date %s", key)
				}
				seen[key] = true
			}
		})
	}
}

func TestDeriveShortRange(t *testing.T) {
	tests := []struct {
		name     string
		day      models.ShortRangeDay
		wantTemp sql.NullFloat64
		wantWind sql.NullFloat64
	}{
		{
			name:     "mean of extremes",
			day:      models.ShortRangeDay{TempMax: models.Float(26), TempMin: models.Float(14), WindMax: models.Float(10)},
			wantTemp: models.Float(20),
			wantWind: models.Float(7),
		},
		{
			name:     "only max",
			day:      models.ShortRangeDay{TempMax: models.Float(31)},
			wantTemp: models.Float(31),
		},
		{
			name:     "only min",
			day:      models.ShortRangeDay{TempMin: models.Float(-3)},
			wantTemp: models.Float(-3),
		},
		{
			name:     "zero gust is calm, not missing",
			day:      models.ShortRangeDay{WindMax: models.Float(0)},
			wantWind: models.Float(0),
		},
		{
			name: "nothing present",
			day:  models.ShortRangeDay{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveShortRange(tt.day)
			if got.Temperature.Valid != tt.wantTemp.Valid || !approx(got.Temperature.Float64, tt.wantTemp.Float64) {
				t.Errorf("Temperature = %+v, want %+v", got.Temperature, tt.wantTemp)
			}
			if got.Wind.Valid != tt.wantWind.Valid || !approx(got.Wind.Float64, tt.wantWind.Float64) {
				t.Errorf("Wind = %+v, want %+v", got.Wind, tt.wantWind)
			}
		})
	}
}

func TestReconcile_PriorityMerge(t *testing.T) {
	target := date("2025-10-15")

	primary := FromSeries(&models.DailySeries{
		Source: "nasa_power",
		Records: []models.DailyRecord{
			{
				Date:          date("2025-10-14"),
				Temperature:   models.Float(15),
				Precipitation: models.Float(0),
			},
			{
				Date: date("2025-10-15"),
				Wind: models.Float(2.5),
			},
		},
	})
	secondary := FromShortRange("open_meteo", []models.ShortRangeDay{
		{
			Date:          date("2025-10-14"),
			TempMax:       models.Float(24),
			TempMin:       models.Float(16),
			Humidity:      models.Float(70),
			Precipitation: models.Float(5),
		},
		{
			Date:          date("2025-10-15"),
			WindMax:       models.Float(10),
			Precipitation: models.Float(1.2),
		},
		{
			Date:    date("2025-12-01"),
			TempMax: models.Float(99),
		},
	})

	r := Reconcile(target, primary, secondary)

	if len(r.Records) != 21 || len(r.Dates) != 21 {
		t.Fatalf("len = %d/%d, want 21", len(r.Records), len(r.Dates))
	}

	oct14, ok := r.At(date("2025-10-14"))
	if !ok {
		t.Fatal("2025-10-14 missing from timeline")
	}
	if oct14.Temperature.Float64 != 15 {
		t.Errorf("temperature = %v, want primary 15 (not derived 20)", oct14.Temperature.Float64)
	}
	if !oct14.Precipitation.Valid || oct14.Precipitation.Float64 != 0 {
		t.Errorf("precipitation = %+v, want primary 0 kept over secondary 5", oct14.Precipitation)
	}
	if oct14.Humidity.Float64 != 70 {
		t.Errorf("humidity = %v, want gap filled with 70", oct14.Humidity.Float64)
	}

	oct15, _ := r.At(target)
	if oct15.Wind.Float64 != 2.5 {
		t.Errorf("wind = %v, want primary 2.5", oct15.Wind.Float64)
	}
	if oct15.Precipitation.Float64 != 1.2 {
		t.Errorf("precipitation = %v, want secondary 1.2", oct15.Precipitation.Float64)
	}
	if oct15.Temperature.Valid {
		t.Error("temperature absent in both sources should stay absent")
	}

	idx := WindowRadius - 1
	if got := r.Provenance[models.MetricTemperature][idx]; got != "nasa_power" {
		t.Errorf("temperature provenance = %q, want nasa_power", got)
	}
	if got := r.Provenance[models.MetricHumidity][idx]; got != "open_meteo" {
		t.Errorf("humidity provenance = %q, want open_meteo", got)
	}
	if got := r.Provenance[models.MetricTemperature][WindowRadius]; got != "" {
		t.Errorf("absent provenance = %q, want empty", got)
	}

	if _, ok := r.At(date("2025-12-01")); ok {
		t.Error("dates outside the window must not appear")
	}
}

func TestReconcile_EmptySources(t *testing.T) {
	r := Reconcile(date("2025-10-15"), FromSeries(nil), FromShortRange("open_meteo", nil))
	if len(r.Records) != 21 {
		t.Fatalf("len = %d, want 21", len(r.Records))
	}
	for _, m := range models.Metrics {
		for i, v := range r.Values(m) {
			if v.Valid {
				t.Errorf("%s[%d] = %v, want absent", m, i, v.Float64)
			}
		}
	}
}
