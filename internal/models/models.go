package models

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used for keys and JSON output.
const DateLayout = "2006-01-02"

type Metric string

const (
	MetricTemperature   Metric = "temperature"
	MetricHumidity      Metric = "humidity"
	MetricWind          Metric = "wind"
	MetricPrecipitation Metric = "precipitation"
)

// Metrics lists every daily metric in report order.
var Metrics = []Metric{MetricTemperature, MetricPrecipitation, MetricHumidity, MetricWind}

type Location struct {
	Name      string  `json:"name,omitempty"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// DailyRecord holds one day's readings. Absent readings are invalid
// NullFloat64 values and are never treated as zero.
type DailyRecord struct {
	Date          time.Time
	Temperature   sql.NullFloat64 // °C
	Humidity      sql.NullFloat64 // %
	Wind          sql.NullFloat64 // m/s
	Precipitation sql.NullFloat64 // mm
}

func (r DailyRecord) Value(m Metric) sql.NullFloat64 {
	switch m {
	case MetricTemperature:
		return r.Temperature
	case MetricHumidity:
		return r.Humidity
	case MetricWind:
		return r.Wind
	case MetricPrecipitation:
		return r.Precipitation
	default:
		return sql.NullFloat64{}
	}
}

func (r *DailyRecord) Set(m Metric, v sql.NullFloat64) {
	switch m {
	case MetricTemperature:
		r.Temperature = v
	case MetricHumidity:
		r.Humidity = v
	case MetricWind:
		r.Wind = v
	case MetricPrecipitation:
		r.Precipitation = v
	}
}

// DailySeries is a provider's daily series for a date range, ordered by date.
type DailySeries struct {
	Source  string
	Records []DailyRecord
}

// Values returns the metric column of the series in date order.
func (s DailySeries) Values(m Metric) []sql.NullFloat64 {
	out := make([]sql.NullFloat64, len(s.Records))
	for i, r := range s.Records {
		out[i] = r.Value(m)
	}
	return out
}

// ByDate indexes the records by DateKey.
func (s DailySeries) ByDate() map[string]DailyRecord {
	out := make(map[string]DailyRecord, len(s.Records))
	for _, r := range s.Records {
		out[DateKey(r.Date)] = r
	}
	return out
}

// ShortRangeDay is one day from the short-range provider, which reports
// temperature extremes and peak gusts instead of daily means.
type ShortRangeDay struct {
	Date          time.Time
	TempMax       sql.NullFloat64
	TempMin       sql.NullFloat64
	WindMax       sql.NullFloat64
	Humidity      sql.NullFloat64
	Precipitation sql.NullFloat64
}

type HourlyRecord struct {
	Time          string // provider local time, e.g. 2025-10-05T14:00
	Temperature   sql.NullFloat64
	Humidity      sql.NullFloat64
	Wind          sql.NullFloat64
	Precipitation sql.NullFloat64 // mm/h
}

// HistoricalSample is a DailyRecord from the archive tagged with its year.
type HistoricalSample struct {
	Year int
	DailyRecord
}

type AQICategory string

const (
	AQIUnknown                     AQICategory = "unknown"
	AQIGood                        AQICategory = "good"
	AQIModerate                    AQICategory = "moderate"
	AQIUnhealthyForSensitiveGroups AQICategory = "unhealthy for sensitive groups"
	AQIUnhealthy                   AQICategory = "unhealthy"
	AQIVeryUnhealthy               AQICategory = "very unhealthy"
	AQIHazardous                   AQICategory = "hazardous"
)

type AirQuality struct {
	AQI               sql.NullInt64
	Category          AQICategory
	DominantPollutant sql.NullString
	Source            string
}

// ProbabilityMetric is an empirical threshold-crossing frequency.
// Probability is nil exactly when SampleSize is zero.
type ProbabilityMetric struct {
	Probability *float64 `json:"probability"`
	SampleSize  int      `json:"sampleSize"`
	Threshold   float64  `json:"threshold"`
	Rule        string   `json:"rule,omitempty"`
}

type Probabilities struct {
	VeryHot           ProbabilityMetric `json:"very_hot"`
	VeryCold          ProbabilityMetric `json:"very_cold"`
	VeryWindy         ProbabilityMetric `json:"very_windy"`
	VeryHumid         ProbabilityMetric `json:"very_humid"`
	VeryUncomfortable ProbabilityMetric `json:"very_uncomfortable"`
}

type DayScore struct {
	Date  time.Time
	Score float64
	Notes []string
}

func (d DayScore) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date  string  `json:"date"`
		Score float64 `json:"score"`
		Notes string  `json:"notes"`
	}{DateKey(d.Date), d.Score, strings.Join(d.Notes, ", ")})
}

type HourScore struct {
	Time  string
	Score float64
	Notes []string
}

func (h HourScore) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Time  string  `json:"time"`
		Score float64 `json:"score"`
		Notes string  `json:"notes"`
	}{h.Time, h.Score, strings.Join(h.Notes, ", ")})
}

// DateKey formats t as YYYY-MM-DD.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Float returns a valid NullFloat64.
func Float(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: true}
}

// Ptr converts a NullFloat64 into a JSON-friendly pointer.
func Ptr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
