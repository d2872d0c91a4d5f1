package outlook

import "github.com/lox/wayraweather/internal/models"

type ComfortLevel string

const (
	ComfortExcellent   ComfortLevel = "excellent"
	ComfortPleasant    ComfortLevel = "pleasant"
	ComfortModerate    ComfortLevel = "moderate"
	ComfortUnfavorable ComfortLevel = "unfavorable"
	ComfortCritical    ComfortLevel = "critical"
)

// Readings assumed when a value is missing for the comfort index.
const (
	comfortDefaultTemp     = 24.0
	comfortDefaultHumidity = 60.0
	comfortDefaultWind     = 2.0
)

type Comfort struct {
	Score int          `json:"score"`
	Level ComfortLevel `json:"level"`
}

// ComfortIndex scores temperature, humidity and wind from -1 to +2 each and
// buckets the total.
func ComfortIndex(rec models.DailyRecord) Comfort {
	t := valueOr(rec.Temperature.Float64, rec.Temperature.Valid, comfortDefaultTemp)
	h := valueOr(rec.Humidity.Float64, rec.Humidity.Valid, comfortDefaultHumidity)
	w := valueOr(rec.Wind.Float64, rec.Wind.Valid, comfortDefaultWind)

	score := band(t, 20, 26, 18, 28) + band(h, 45, 65, 35, 75) + band(w, 1, 5, 0, 8)

	var level ComfortLevel
	switch {
	case score >= 5:
		level = ComfortExcellent
	case score >= 3:
		level = ComfortPleasant
	case score >= 1:
		level = ComfortModerate
	case score >= -1:
		level = ComfortUnfavorable
	default:
		level = ComfortCritical
	}
	return Comfort{Score: score, Level: level}
}

// band is +2 inside [lo, hi], +1 inside [outerLo, outerHi], else -1.
func band(v, lo, hi, outerLo, outerHi float64) int {
	switch {
	case v >= lo && v <= hi:
		return 2
	case v >= outerLo && v <= outerHi:
		return 1
	default:
		return -1
	}
}

func valueOr(v float64, ok bool, def float64) float64 {
	if !ok {
		return def
	}
	return v
}
