package ingest

import (
	"github.com/lox/wayraweather/internal/models"
)

const (
	FlagTempOutOfRange  = "temp_out_of_range"
	FlagHumidityInvalid = "humidity_invalid"
	FlagWindNegative    = "wind_negative"
	FlagWindUnlikely    = "wind_speed_unlikely"
	FlagPrecipNegative  = "precip_negative"
	FlagPrecipUnlikely  = "precip_unlikely"
)

// ValidateRecord returns plausibility flags for a daily record. Absent
// values are never flagged and flagged values are left untouched.
func ValidateRecord(rec models.DailyRecord) []string {
	var flags []string

	if rec.Temperature.Valid {
		if rec.Temperature.Float64 < -60 || rec.Temperature.Float64 > 60 {
			flags = append(flags, FlagTempOutOfRange)
		}
	}

	if rec.Humidity.Valid {
		if rec.Humidity.Float64 < 0 || rec.Humidity.Float64 > 100 {
			flags = append(flags, FlagHumidityInvalid)
		}
	}

	if rec.Wind.Valid {
		if rec.Wind.Float64 < 0 {
			flags = append(flags, FlagWindNegative)
		} else if rec.Wind.Float64 > 60 {
			flags = append(flags, FlagWindUnlikely)
		}
	}

	if rec.Precipitation.Valid {
		if rec.Precipitation.Float64 < 0 {
			flags = append(flags, FlagPrecipNegative)
		} else if rec.Precipitation.Float64 > 500 {
			flags = append(flags, FlagPrecipUnlikely)
		}
	}

	return flags
}
