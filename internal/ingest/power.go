package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/lox/wayraweather/internal/models"
)

const (
	powerEndpoint   = "temporal/daily/point"
	powerParameters = "T2M,RH2M,WS2M,PRECTOTCORR"
	powerDateLayout = "20060102"
)

// PowerClient reads daily point data from the NASA POWER archive. It is the
// primary source: true daily means with full coverage since 1981, but
// nothing for dates that have not been processed yet.
type PowerClient struct {
	baseURL string
	fetch   fetcher
}

func NewPowerClient(client *http.Client) *PowerClient {
	return &PowerClient{
		baseURL: "https://power.larc.nasa.gov/api/temporal/daily/point",
		fetch:   newFetcher(SourceNASAPower, client),
	}
}

// Historical returns a client for the per-year history sweep. It shares the
// HTTP client but skips the circuit breaker, so failed years cannot reject
// the years still pending.
func (p *PowerClient) Historical() *PowerClient {
	return &PowerClient{baseURL: p.baseURL, fetch: p.fetch.unguarded()}
}

type powerResponse struct {
	Properties struct {
		Parameter map[string]map[string]*float64 `json:"parameter"`
	} `json:"properties"`
}

func (p *PowerClient) FetchDailySeries(ctx context.Context, lat, lon float64, start, end time.Time) (*models.DailySeries, error) {
	q := url.Values{}
	q.Set("parameters", powerParameters)
	q.Set("community", "RE")
	q.Set("latitude", fmt.Sprintf("%.4f", lat))
	q.Set("longitude", fmt.Sprintf("%.4f", lon))
	q.Set("start", start.Format(powerDateLayout))
	q.Set("end", end.Format(powerDateLayout))
	q.Set("format", "JSON")

	body, err := p.fetch.get(ctx, powerEndpoint, p.baseURL+"?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var data powerResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	return parsePower(data), nil
}

func parsePower(data powerResponse) *models.DailySeries {
	params := data.Properties.Parameter
	columns := map[models.Metric]map[string]*float64{
		models.MetricTemperature:   params["T2M"],
		models.MetricHumidity:      params["RH2M"],
		models.MetricWind:          params["WS2M"],
		models.MetricPrecipitation: params["PRECTOTCORR"],
	}

	seen := make(map[string]bool)
	var keys []string
	for _, col := range columns {
		for k := range col {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)

	series := &models.DailySeries{Source: SourceNASAPower}
	for _, k := range keys {
		date, err := time.Parse(powerDateLayout, k)
		if err != nil {
			continue
		}
		rec := models.DailyRecord{Date: date}
		for metric, col := range columns {
			rec.Set(metric, cleanValue(col[k]))
		}
		series.Records = append(series.Records, rec)
	}
	return series
}
