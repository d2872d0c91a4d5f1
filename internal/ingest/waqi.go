package ingest

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/lox/wayraweather/internal/models"
)

const waqiEndpoint = "feed/geo"

// WAQIClient fetches the nearest station's air quality index from the
// World Air Quality Index project.
type WAQIClient struct {
	baseURL string
	token   string
	fetch   fetcher
}

func NewWAQIClient(client *http.Client, token string) *WAQIClient {
	if token == "" {
		token = "demo"
	}
	return &WAQIClient{
		baseURL: "https://api.waqi.info/feed",
		token:   token,
		fetch:   newFetcher(SourceWAQI, client),
	}
}

// waqiResponse carries data as raw JSON: on error the feed puts a message
// string there instead of an object.
type waqiResponse struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

type waqiData struct {
	AQI         json.RawMessage `json:"aqi"`
	DominentPol string          `json:"dominentpol"`
}

// FetchAirQuality returns the AQI near lat/lon. A feed that reports no
// numeric index yields an AirQuality with an unknown category, not an error.
func (w *WAQIClient) FetchAirQuality(ctx context.Context, lat, lon float64) (*models.AirQuality, error) {
	u := fmt.Sprintf("%s/geo:%.4f;%.4f/?%s", w.baseURL, lat, lon, url.Values{"token": {w.token}}.Encode())

	body, err := w.fetch.get(ctx, waqiEndpoint, u)
	if err != nil {
		return nil, err
	}

	var data waqiResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	aq := &models.AirQuality{Category: models.AQIUnknown, Source: SourceWAQI}
	if data.Status != "ok" {
		return aq, nil
	}

	var feed waqiData
	if err := json.Unmarshal(data.Data, &feed); err != nil {
		return nil, fmt.Errorf("unmarshal data: %w", err)
	}

	var aqi int64
	if err := json.Unmarshal(feed.AQI, &aqi); err == nil {
		aq.AQI = sql.NullInt64{Int64: aqi, Valid: true}
		aq.Category = CategorizeAQI(aqi)
	}
	if feed.DominentPol != "" {
		aq.DominantPollutant = sql.NullString{String: feed.DominentPol, Valid: true}
	}
	return aq, nil
}

// CategorizeAQI maps a US EPA style index onto its category band.
func CategorizeAQI(aqi int64) models.AQICategory {
	switch {
	case aqi <= 50:
		return models.AQIGood
	case aqi <= 100:
		return models.AQIModerate
	case aqi <= 150:
		return models.AQIUnhealthyForSensitiveGroups
	case aqi <= 200:
		return models.AQIUnhealthy
	case aqi <= 300:
		return models.AQIVeryUnhealthy
	default:
		return models.AQIHazardous
	}
}
