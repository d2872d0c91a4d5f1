package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/lox/wayraweather/internal/models"
	"github.com/lox/wayraweather/internal/store"
)

// RunRecorder persists one audit row per provider fetch.
type RunRecorder interface {
	StartIngestRun(source, endpoint string, locationID *string, start, end time.Time) (*store.IngestRun, error)
	CompleteIngestRun(run *store.IngestRun) error
}

// audit wraps fn with an ingest run. Recording failures are logged and never
// affect the fetch result.
func audit[T any](rec RunRecorder, source, endpoint string, lat, lon float64, start, end time.Time, fn func() (T, int, error)) (T, error) {
	if rec == nil {
		v, _, err := fn()
		return v, err
	}

	loc := fmt.Sprintf("%.3f,%.3f", lat, lon)
	run, err := rec.StartIngestRun(source, endpoint, &loc, start, end)
	if err != nil {
		log.Printf("ingest: start audit %s/%s: %v", source, endpoint, err)
	}

	v, n, fetchErr := fn()

	if run != nil {
		run.Success = fetchErr == nil
		run.RecordsParsed = sql.NullInt64{Int64: int64(n), Valid: fetchErr == nil}
		if fetchErr != nil {
			run.ErrorMessage = sql.NullString{String: fetchErr.Error(), Valid: true}
		}
		if err := rec.CompleteIngestRun(run); err != nil {
			log.Printf("ingest: complete audit %s/%s: %v", source, endpoint, err)
		}
	}
	return v, fetchErr
}

type auditedDaily struct {
	src      DailySource
	rec      RunRecorder
	source   string
	endpoint string
}

// AuditDaily records every FetchDailySeries call on src.
func AuditDaily(src DailySource, rec RunRecorder, source, endpoint string) DailySource {
	return &auditedDaily{src: src, rec: rec, source: source, endpoint: endpoint}
}

func (a *auditedDaily) FetchDailySeries(ctx context.Context, lat, lon float64, start, end time.Time) (*models.DailySeries, error) {
	return audit(a.rec, a.source, a.endpoint, lat, lon, start, end, func() (*models.DailySeries, int, error) {
		s, err := a.src.FetchDailySeries(ctx, lat, lon, start, end)
		if s == nil {
			return nil, 0, err
		}
		return s, len(s.Records), err
	})
}

type auditedShortRange struct {
	src      ShortRangeSource
	rec      RunRecorder
	source   string
	endpoint string
}

// AuditShortRange records every FetchShortRange call on src.
func AuditShortRange(src ShortRangeSource, rec RunRecorder, source, endpoint string) ShortRangeSource {
	return &auditedShortRange{src: src, rec: rec, source: source, endpoint: endpoint}
}

func (a *auditedShortRange) FetchShortRange(ctx context.Context, lat, lon float64, start, end time.Time) ([]models.ShortRangeDay, error) {
	return audit(a.rec, a.source, a.endpoint, lat, lon, start, end, func() ([]models.ShortRangeDay, int, error) {
		days, err := a.src.FetchShortRange(ctx, lat, lon, start, end)
		return days, len(days), err
	})
}

type auditedHourly struct {
	src      HourlySource
	rec      RunRecorder
	source   string
	endpoint string
}

// AuditHourly records every FetchHourly call on src.
func AuditHourly(src HourlySource, rec RunRecorder, source, endpoint string) HourlySource {
	return &auditedHourly{src: src, rec: rec, source: source, endpoint: endpoint}
}

func (a *auditedHourly) FetchHourly(ctx context.Context, lat, lon float64, date time.Time) ([]models.HourlyRecord, error) {
	return audit(a.rec, a.source, a.endpoint, lat, lon, date, date, func() ([]models.HourlyRecord, int, error) {
		hours, err := a.src.FetchHourly(ctx, lat, lon, date)
		return hours, len(hours), err
	})
}

// Clients are the production sources wired for an analyzer. History reads
// the same archive as Archive without its circuit breaker.
type Clients struct {
	Archive    DailySource
	History    DailySource
	ShortRange ShortRangeSource
	Hourly     HourlySource
}

// Audit wraps the production clients so each of their fetches is logged to
// rec. A nil recorder returns the clients unchanged.
func Audit(rec RunRecorder, power *PowerClient, meteo *OpenMeteoClient) Clients {
	history := power.Historical()
	if rec == nil {
		return Clients{Archive: power, History: history, ShortRange: meteo, Hourly: meteo}
	}
	return Clients{
		Archive:    AuditDaily(power, rec, SourceNASAPower, powerEndpoint),
		History:    AuditDaily(history, rec, SourceNASAPower, powerEndpoint),
		ShortRange: AuditShortRange(meteo, rec, SourceOpenMeteo, openMeteoDailyEndpoint),
		Hourly:     AuditHourly(meteo, rec, SourceOpenMeteo, openMeteoHourlyEndpoint),
	}
}
