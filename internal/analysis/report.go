package analysis

import (
	"github.com/lox/wayraweather/internal/models"
	"github.com/lox/wayraweather/internal/outlook"
)

type Report struct {
	Location      models.Location                     `json:"location"`
	Date          string                              `json:"date"`
	EventType     outlook.EventType                   `json:"event_type"`
	Weights       outlook.Weights                     `json:"weights"`
	Series        SeriesView                          `json:"series"`
	Trends        map[models.Metric]outlook.Direction `json:"trends"`
	BestDays      []models.DayScore                   `json:"best_days"`
	Quality       map[models.Metric]outlook.Quality   `json:"quality"`
	Flags         map[string][]string                 `json:"flags,omitempty"`
	Comfort       outlook.Comfort                     `json:"comfort"`
	Eco           outlook.EcoImpact                   `json:"eco_impact"`
	Probabilities *models.Probabilities               `json:"probabilities"`
	Advice        string                              `json:"advice,omitempty"`
}

// SeriesView is the reconciled series in column form. Absent readings are
// JSON nulls; Sources names the provider behind each value.
type SeriesView struct {
	Dates         []string                   `json:"dates"`
	Temperature   []*float64                 `json:"temperature"`
	Humidity      []*float64                 `json:"humidity"`
	Wind          []*float64                 `json:"wind"`
	Precipitation []*float64                 `json:"precipitation"`
	Sources       map[models.Metric][]string `json:"sources"`
}

func newSeriesView(r outlook.Reconciled) SeriesView {
	n := len(r.Records)
	v := SeriesView{
		Dates:         make([]string, n),
		Temperature:   make([]*float64, n),
		Humidity:      make([]*float64, n),
		Wind:          make([]*float64, n),
		Precipitation: make([]*float64, n),
		Sources:       r.Provenance,
	}
	for i, rec := range r.Records {
		v.Dates[i] = models.DateKey(rec.Date)
		v.Temperature[i] = models.Ptr(rec.Temperature)
		v.Humidity[i] = models.Ptr(rec.Humidity)
		v.Wind[i] = models.Ptr(rec.Wind)
		v.Precipitation[i] = models.Ptr(rec.Precipitation)
	}
	return v
}

// Value returns the reconciled value of m on the target date.
func (r *Report) Value(m models.Metric) *float64 {
	for i, d := range r.Series.Dates {
		if d != r.Date {
			continue
		}
		switch m {
		case models.MetricTemperature:
			return r.Series.Temperature[i]
		case models.MetricHumidity:
			return r.Series.Humidity[i]
		case models.MetricWind:
			return r.Series.Wind[i]
		case models.MetricPrecipitation:
			return r.Series.Precipitation[i]
		}
	}
	return nil
}
