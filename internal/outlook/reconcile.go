package outlook

import (
	"database/sql"
	"time"

	"github.com/lox/wayraweather/internal/models"
)

const (
	// WindowRadius is the number of days either side of the target date.
	WindowRadius = 10

	// GustToMean approximates a sustained mean wind from a daily peak gust.
	GustToMean = 0.7
)

// Timeline returns the contiguous calendar days target-10 ... target+10.
func Timeline(target time.Time) []time.Time {
	day := models.Day(target)
	dates := make([]time.Time, 0, 2*WindowRadius+1)
	for off := -WindowRadius; off <= WindowRadius; off++ {
		dates = append(dates, day.AddDate(0, 0, off))
	}
	return dates
}

// Source is one provider's records keyed by date, in a form the
// reconciler can look up directly.
type Source struct {
	Name    string
	Records map[string]models.DailyRecord
}

// FromSeries adapts an archive series. A nil series is an empty source.
func FromSeries(s *models.DailySeries) Source {
	if s == nil {
		return Source{}
	}
	return Source{Name: s.Source, Records: s.ByDate()}
}

// FromShortRange derives comparable daily records from short-range days.
func FromShortRange(name string, days []models.ShortRangeDay) Source {
	recs := make(map[string]models.DailyRecord, len(days))
	for _, d := range days {
		recs[models.DateKey(d.Date)] = DeriveShortRange(d)
	}
	return Source{Name: name, Records: recs}
}

// DeriveShortRange turns extremes into means: temperature is the midpoint of
// max and min (or whichever exists) and wind is the peak gust scaled by
// GustToMean. Humidity and precipitation pass through.
func DeriveShortRange(d models.ShortRangeDay) models.DailyRecord {
	rec := models.DailyRecord{
		Date:          models.Day(d.Date),
		Humidity:      d.Humidity,
		Precipitation: d.Precipitation,
	}

	switch {
	case d.TempMax.Valid && d.TempMin.Valid:
		rec.Temperature = models.Float((d.TempMax.Float64 + d.TempMin.Float64) / 2)
	case d.TempMax.Valid:
		rec.Temperature = d.TempMax
	case d.TempMin.Valid:
		rec.Temperature = d.TempMin
	}

	if d.WindMax.Valid {
		rec.Wind = models.Float(d.WindMax.Float64 * GustToMean)
	}
	return rec
}

// firstPresent walks sources in priority order and stops at the first
// defined value for the date and metric.
func firstPresent(sources []Source, key string, m models.Metric) (sql.NullFloat64, string) {
	for _, src := range sources {
		rec, ok := src.Records[key]
		if !ok {
			continue
		}
		if v := rec.Value(m); v.Valid {
			return v, src.Name
		}
	}
	return sql.NullFloat64{}, ""
}

// Reconciled is the merged 21-day series. Provenance names the source that
// filled each date per metric, or "" when no source had a value.
type Reconciled struct {
	Dates      []time.Time
	Records    []models.DailyRecord
	Provenance map[models.Metric][]string
}

// Merge fills every timeline date metric by metric from sources in the
// given priority order. A value taken from an earlier source is never
// replaced by a later one.
func Merge(target time.Time, sources ...Source) Reconciled {
	dates := Timeline(target)
	out := Reconciled{
		Dates:      dates,
		Records:    make([]models.DailyRecord, len(dates)),
		Provenance: make(map[models.Metric][]string, len(models.Metrics)),
	}
	for _, m := range models.Metrics {
		out.Provenance[m] = make([]string, len(dates))
	}

	for i, d := range dates {
		key := models.DateKey(d)
		out.Records[i].Date = d
		for _, m := range models.Metrics {
			v, from := firstPresent(sources, key, m)
			out.Records[i].Set(m, v)
			out.Provenance[m][i] = from
		}
	}
	return out
}

// Reconcile merges the archive ahead of the short-range provider.
func Reconcile(target time.Time, primary, secondary Source) Reconciled {
	return Merge(target, primary, secondary)
}

// Values returns one metric column in timeline order.
func (r Reconciled) Values(m models.Metric) []sql.NullFloat64 {
	return models.DailySeries{Records: r.Records}.Values(m)
}

// At returns the record for date, if it lies on the timeline.
func (r Reconciled) At(date time.Time) (models.DailyRecord, bool) {
	key := models.DateKey(date)
	for _, rec := range r.Records {
		if models.DateKey(rec.Date) == key {
			return rec, true
		}
	}
	return models.DailyRecord{}, false
}
