package outlook

import (
	"database/sql"

	"github.com/lox/wayraweather/internal/models"
)

// Quality summarises how complete a series is.
type Quality struct {
	N        int     `json:"n"`
	Valid    int     `json:"valid"`
	Nulls    int     `json:"nulls"`
	Coverage float64 `json:"coverage"`
}

func SeriesQuality(values []sql.NullFloat64) Quality {
	q := Quality{N: len(values)}
	for _, v := range values {
		if v.Valid {
			q.Valid++
		}
	}
	q.Nulls = q.N - q.Valid
	if q.N > 0 {
		q.Coverage = round(float64(q.Valid)/float64(q.N), 3)
	}
	return q
}

// QualityByMetric reports SeriesQuality for every reconciled metric.
func QualityByMetric(r Reconciled) map[models.Metric]Quality {
	out := make(map[models.Metric]Quality, len(models.Metrics))
	for _, m := range models.Metrics {
		out[m] = SeriesQuality(r.Values(m))
	}
	return out
}
