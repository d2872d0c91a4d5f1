package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/lox/wayraweather/internal/models"
)

const (
	openMeteoDailyEndpoint  = "forecast/daily"
	openMeteoHourlyEndpoint = "forecast/hourly"
)

// OpenMeteoClient reads short-range daily and hourly data from Open-Meteo.
// Daily values are extremes (max/min temperature, max wind gust), so they
// need deriving before they are comparable with the archive.
type OpenMeteoClient struct {
	baseURL string
	fetch   fetcher
}

func NewOpenMeteoClient(client *http.Client) *OpenMeteoClient {
	return &OpenMeteoClient{
		baseURL: "https://api.open-meteo.com/v1/forecast",
		fetch:   newFetcher(SourceOpenMeteo, client),
	}
}

type openMeteoDailyResponse struct {
	Daily struct {
		Time          []string   `json:"time"`
		TempMax       []*float64 `json:"temperature_2m_max"`
		TempMin       []*float64 `json:"temperature_2m_min"`
		Precipitation []*float64 `json:"precipitation_sum"`
		WindMax       []*float64 `json:"wind_speed_10m_max"`
		Humidity      []*float64 `json:"relative_humidity_2m_mean"`
	} `json:"daily"`
}

type openMeteoHourlyResponse struct {
	Hourly struct {
		Time          []string   `json:"time"`
		Temperature   []*float64 `json:"temperature_2m"`
		Humidity      []*float64 `json:"relative_humidity_2m"`
		Precipitation []*float64 `json:"precipitation"`
		Wind          []*float64 `json:"wind_speed_10m"`
	} `json:"hourly"`
}

func (o *OpenMeteoClient) query(lat, lon float64, start, end time.Time) url.Values {
	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%.4f", lat))
	q.Set("longitude", fmt.Sprintf("%.4f", lon))
	q.Set("start_date", models.DateKey(start))
	q.Set("end_date", models.DateKey(end))
	q.Set("timezone", "auto")
	q.Set("wind_speed_unit", "ms")
	return q
}

func (o *OpenMeteoClient) FetchShortRange(ctx context.Context, lat, lon float64, start, end time.Time) ([]models.ShortRangeDay, error) {
	q := o.query(lat, lon, start, end)
	q.Set("daily", "temperature_2m_max,temperature_2m_min,precipitation_sum,wind_speed_10m_max,relative_humidity_2m_mean")

	body, err := o.fetch.get(ctx, openMeteoDailyEndpoint, o.baseURL+"?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var data openMeteoDailyResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	d := data.Daily
	days := make([]models.ShortRangeDay, 0, len(d.Time))
	for i, raw := range d.Time {
		date, err := time.Parse(models.DateLayout, raw)
		if err != nil {
			continue
		}
		days = append(days, models.ShortRangeDay{
			Date:          date,
			TempMax:       cleanValue(at(d.TempMax, i)),
			TempMin:       cleanValue(at(d.TempMin, i)),
			WindMax:       cleanValue(at(d.WindMax, i)),
			Humidity:      cleanValue(at(d.Humidity, i)),
			Precipitation: cleanValue(at(d.Precipitation, i)),
		})
	}
	return days, nil
}

func (o *OpenMeteoClient) FetchHourly(ctx context.Context, lat, lon float64, date time.Time) ([]models.HourlyRecord, error) {
	q := o.query(lat, lon, date, date)
	q.Set("hourly", "temperature_2m,relative_humidity_2m,precipitation,wind_speed_10m")

	body, err := o.fetch.get(ctx, openMeteoHourlyEndpoint, o.baseURL+"?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var data openMeteoHourlyResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	h := data.Hourly
	hours := make([]models.HourlyRecord, 0, len(h.Time))
	for i, ts := range h.Time {
		hours = append(hours, models.HourlyRecord{
			Time:          ts,
			Temperature:   cleanValue(at(h.Temperature, i)),
			Humidity:      cleanValue(at(h.Humidity, i)),
			Wind:          cleanValue(at(h.Wind, i)),
			Precipitation: cleanValue(at(h.Precipitation, i)),
		})
	}
	return hours, nil
}

// at returns vals[i], or nil when the column is shorter than the time axis.
func at(vals []*float64, i int) *float64 {
	if i < len(vals) {
		return vals[i]
	}
	return nil
}
