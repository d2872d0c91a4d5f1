package outlook

import (
	"database/sql"

	"github.com/lox/wayraweather/internal/models"
)

type PrecipClass string

const (
	PrecipUnknown  PrecipClass = "unknown"
	PrecipLow      PrecipClass = "low"
	PrecipModerate PrecipClass = "moderate"
	PrecipHigh     PrecipClass = "high"
)

type ImpactLevel string

const (
	ImpactLow    ImpactLevel = "low"
	ImpactMedium ImpactLevel = "medium"
	ImpactHigh   ImpactLevel = "high"
)

type EcoImpact struct {
	Level             ImpactLevel        `json:"level"`
	Score             int                `json:"score"`
	Precipitation     PrecipClass        `json:"precipitation"`
	AQI               *int64             `json:"aqi"`
	AQICategory       models.AQICategory `json:"aqi_category"`
	DominantPollutant string             `json:"dominant_pollutant,omitempty"`
}

func ClassifyPrecip(p sql.NullFloat64) PrecipClass {
	switch {
	case !p.Valid:
		return PrecipUnknown
	case p.Float64 < 1:
		return PrecipLow
	case p.Float64 < 5:
		return PrecipModerate
	default:
		return PrecipHigh
	}
}

func precipImpact(c PrecipClass) int {
	switch c {
	case PrecipModerate:
		return 1
	case PrecipHigh:
		return 2
	default:
		return 0
	}
}

func aqiImpact(c models.AQICategory) int {
	switch c {
	case models.AQIModerate:
		return 1
	case models.AQIUnhealthyForSensitiveGroups:
		return 2
	case models.AQIUnhealthy, models.AQIVeryUnhealthy, models.AQIHazardous:
		return 3
	default:
		return 0
	}
}

// Eco combines the day's rain with air quality. aq may be nil.
func Eco(precip sql.NullFloat64, aq *models.AirQuality) EcoImpact {
	out := EcoImpact{
		Precipitation: ClassifyPrecip(precip),
		AQICategory:   models.AQIUnknown,
	}
	if aq != nil {
		out.AQICategory = aq.Category
		if aq.AQI.Valid {
			v := aq.AQI.Int64
			out.AQI = &v
		}
		out.DominantPollutant = aq.DominantPollutant.String
	}

	out.Score = precipImpact(out.Precipitation) + aqiImpact(out.AQICategory)
	switch {
	case out.Score <= 1:
		out.Level = ImpactLow
	case out.Score <= 3:
		out.Level = ImpactMedium
	default:
		out.Level = ImpactHigh
	}
	return out
}
