package outlook

import (
	"database/sql"
	"math"
	"sort"

	"github.com/lox/wayraweather/internal/models"
)

const (
	TopDays  = 5
	TopHours = 3
)

// Sub-scores are each in [0, 2]; absent readings score 0.

func temperatureScore(t sql.NullFloat64) float64 {
	if !t.Valid {
		return 0
	}
	return math.Max(0, 2-math.Abs(t.Float64-22)/4)
}

func precipitationScore(p sql.NullFloat64) float64 {
	switch {
	case !p.Valid:
		return 0
	case p.Float64 < 1:
		return 2
	case p.Float64 < 3:
		return 1
	default:
		return 0
	}
}

func windScore(w sql.NullFloat64) float64 {
	switch {
	case !w.Valid:
		return 0
	case w.Float64 >= 1 && w.Float64 <= 5:
		return 2
	case w.Float64 >= 0 && w.Float64 <= 7:
		return 1
	default:
		return 0
	}
}

func humidityScore(h sql.NullFloat64) float64 {
	switch {
	case !h.Valid:
		return 0
	case h.Float64 >= 45 && h.Float64 <= 65:
		return 2
	case h.Float64 >= 35 && h.Float64 <= 75:
		return 1
	default:
		return 0
	}
}

func in(v sql.NullFloat64, lo, hi float64) bool {
	return v.Valid && v.Float64 >= lo && v.Float64 <= hi
}

// ScoreDay weights the four sub-scores and tags the metrics that sit in
// their ideal range.
func ScoreDay(rec models.DailyRecord, w Weights) models.DayScore {
	score := w.Temperature*temperatureScore(rec.Temperature) +
		w.Precipitation*precipitationScore(rec.Precipitation) +
		w.Wind*windScore(rec.Wind) +
		w.Humidity*humidityScore(rec.Humidity)

	notes := []string{}
	if rec.Precipitation.Valid && rec.Precipitation.Float64 < 1 {
		notes = append(notes, "low rain")
	}
	if in(rec.Temperature, 18, 26) {
		notes = append(notes, "pleasant temperature")
	}
	if in(rec.Wind, 1, 5) {
		notes = append(notes, "comfortable wind")
	}
	if in(rec.Humidity, 45, 65) {
		notes = append(notes, "optimal humidity")
	}

	return models.DayScore{Date: rec.Date, Score: round(score, 2), Notes: notes}
}

// RankDays returns the best TopDays days for the event, highest first.
// Equal scores keep chronological order.
func RankDays(records []models.DailyRecord, event EventType) []models.DayScore {
	w := WeightsFor(event)
	scored := make([]models.DayScore, len(records))
	for i, rec := range records {
		scored[i] = ScoreDay(rec, w)
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > TopDays {
		scored = scored[:TopDays]
	}
	return scored
}

// ScoreHour starts from 1.0 and adjusts for temperature, rain, humidity
// and wind.
func ScoreHour(h models.HourlyRecord) models.HourScore {
	score := 1.0
	var notes []string

	if t := h.Temperature; t.Valid {
		score += math.Max(0, 1-math.Abs(t.Float64-24)/12)
		switch {
		case t.Float64 >= 32:
			score -= 0.6
			notes = append(notes, "very warm")
		case t.Float64 <= 18:
			score -= 0.25
			notes = append(notes, "cool")
		}
	}

	if r := h.Precipitation; r.Valid {
		score -= math.Min(1, r.Float64*0.4)
		if r.Float64 >= 1 {
			notes = append(notes, "rain")
		}
	}

	if hu := h.Humidity; hu.Valid && hu.Float64 > 70 {
		score -= (hu.Float64 - 70) / 120
		notes = append(notes, "humidity")
	}

	if w := h.Wind; w.Valid && w.Float64 > 7 {
		score -= (w.Float64 - 7) / 15
		notes = append(notes, "wind")
	}

	if len(notes) == 0 {
		notes = []string{"stable conditions"}
	}
	return models.HourScore{Time: h.Time, Score: round(score, 3), Notes: notes}
}

// RankHours returns the best TopHours hours, highest first.
func RankHours(hours []models.HourlyRecord) []models.HourScore {
	scored := make([]models.HourScore, len(hours))
	for i, h := range hours {
		scored[i] = ScoreHour(h)
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > TopHours {
		scored = scored[:TopHours]
	}
	return scored
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
