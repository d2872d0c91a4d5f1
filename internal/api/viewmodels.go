package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/lox/wayraweather/internal/store"
)

// HealthStatus is the /health response.
type HealthStatus struct {
	Status string `json:"status"`
	Audit  bool   `json:"audit"`
}

// pointQuery is the lat/lon/date triple shared by the GET endpoints.
type pointQuery struct {
	Lat  float64 `validate:"gte=-90,lte=90"`
	Lon  float64 `validate:"gte=-180,lte=180"`
	Date string  `validate:"required"`
}

func parsePointQuery(r *http.Request) (pointQuery, error) {
	var q pointQuery
	values := r.URL.Query()

	latStr, lonStr := values.Get("lat"), values.Get("lon")
	if latStr == "" || lonStr == "" {
		return q, errors.New("lat and lon query parameters are required")
	}

	var err error
	if q.Lat, err = strconv.ParseFloat(latStr, 64); err != nil {
		return q, fmt.Errorf("invalid lat %q", latStr)
	}
	if q.Lon, err = strconv.ParseFloat(lonStr, 64); err != nil {
		return q, fmt.Errorf("invalid lon %q", lonStr)
	}
	q.Date = values.Get("date")

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

type ingestHealthQuery struct {
	Days int `validate:"gte=1,lte=90"`
}

// IngestFailure is one failed provider fetch.
type IngestFailure struct {
	StartedAt time.Time `json:"started_at"`
	Source    string    `json:"source"`
	Endpoint  string    `json:"endpoint"`
	Location  string    `json:"location,omitempty"`
	Error     string    `json:"error"`
}

type IngestHealthView struct {
	Days      int                         `json:"days"`
	Summaries []store.IngestHealthSummary `json:"summaries"`
	Failures  []IngestFailure             `json:"recent_failures"`
}

func newIngestHealthView(days int, summaries []store.IngestHealthSummary, runs []store.IngestRun) IngestHealthView {
	v := IngestHealthView{
		Days:      days,
		Summaries: summaries,
		Failures:  make([]IngestFailure, 0, len(runs)),
	}
	if v.Summaries == nil {
		v.Summaries = []store.IngestHealthSummary{}
	}
	for _, r := range runs {
		v.Failures = append(v.Failures, IngestFailure{
			StartedAt: r.StartedAt,
			Source:    r.Source,
			Endpoint:  r.Endpoint,
			Location:  r.LocationID.String,
			Error:     r.ErrorMessage.String,
		})
	}
	return v
}
