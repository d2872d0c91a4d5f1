package analysis

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/lox/wayraweather/internal/history"
	"github.com/lox/wayraweather/internal/ingest"
	"github.com/lox/wayraweather/internal/metrics"
	"github.com/lox/wayraweather/internal/models"
	"github.com/lox/wayraweather/internal/outlook"
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidLocation = errors.New("invalid location")
)

const DefaultHistoryTimeout = 45 * time.Second

var validate = validator.New()

// Advisor writes a short piece of advice for a finished report.
type Advisor interface {
	Advise(ctx context.Context, r *Report) (string, error)
}

// Sources are the providers an Analyzer reads from. AirQuality may be nil.
// History feeds the per-year sampler and defaults to Archive.
type Sources struct {
	Archive    ingest.DailySource
	History    ingest.DailySource
	ShortRange ingest.ShortRangeSource
	Hourly     ingest.HourlySource
	AirQuality ingest.AirQualitySource
}

type Config struct {
	HistoryTimeout     time.Duration
	HistoryConcurrency int
	Advisor            Advisor
}

type Analyzer struct {
	src            Sources
	sampler        *history.Sampler
	advisor        Advisor
	historyTimeout time.Duration
}

func New(src Sources, cfg Config) *Analyzer {
	if cfg.HistoryTimeout <= 0 {
		cfg.HistoryTimeout = DefaultHistoryTimeout
	}
	if src.History == nil {
		src.History = src.Archive
	}
	return &Analyzer{
		src:            src,
		sampler:        history.NewSampler(src.History, cfg.HistoryConcurrency),
		advisor:        cfg.Advisor,
		historyTimeout: cfg.HistoryTimeout,
	}
}

type Request struct {
	Latitude  float64 `json:"lat" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"lon" validate:"gte=-180,lte=180"`
	Name      string  `json:"name,omitempty" validate:"max=120"`
	Date      string  `json:"date" validate:"required"`
	EventType string  `json:"event_type,omitempty" validate:"max=40"`
}

func (r Request) Location() models.Location {
	return models.Location{Name: r.Name, Latitude: r.Latitude, Longitude: r.Longitude}
}

// ParseDate parses a YYYY-MM-DD date, wrapping failures in ErrInvalidDate.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// Validate checks req before anything is fetched and returns the parsed
// target date.
func (r Request) Validate() (time.Time, error) {
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Field() == "Date" {
			return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidDate, err)
		}
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidLocation, err)
	}
	return ParseDate(r.Date)
}

func checkCoords(lat, lon float64) error {
	r := Request{Latitude: lat, Longitude: lon}
	if err := validate.StructPartial(r, "Latitude", "Longitude"); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLocation, err)
	}
	return nil
}

// Analyze builds the full report for one location, date and event. Provider
// failures degrade parts of the report to absent values; only an invalid
// request or a cancelled context is returned as an error.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*Report, error) {
	target, err := req.Validate()
	if err != nil {
		metrics.AnalysesTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	event := outlook.EventTrip
	if req.EventType != "" {
		event = outlook.ParseEventType(req.EventType)
	}

	dates := outlook.Timeline(target)
	start, end := dates[0], dates[len(dates)-1]
	lat, lon := req.Latitude, req.Longitude

	var (
		archive *models.DailySeries
		short   []models.ShortRangeDay
		air     *models.AirQuality
		probs   *models.Probabilities
		g       errgroup.Group
	)

	g.Go(func() error {
		s, err := a.src.Archive.FetchDailySeries(ctx, lat, lon, start, end)
		if err != nil {
			log.Printf("analysis: archive fetch failed: %v", err)
			return nil
		}
		archive = s
		return nil
	})
	g.Go(func() error {
		days, err := a.src.ShortRange.FetchShortRange(ctx, lat, lon, start, end)
		if err != nil {
			log.Printf("analysis: short-range fetch failed: %v", err)
			return nil
		}
		short = days
		return nil
	})
	if a.src.AirQuality != nil {
		g.Go(func() error {
			aq, err := a.src.AirQuality.FetchAirQuality(ctx, lat, lon)
			if err != nil {
				log.Printf("analysis: air quality fetch failed: %v", err)
				return nil
			}
			air = aq
			return nil
		})
	}
	g.Go(func() error {
		probs = a.history(ctx, lat, lon, target)
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		metrics.AnalysesTotal.WithLabelValues("cancelled").Inc()
		return nil, err
	}

	rec := outlook.Reconcile(target,
		outlook.FromSeries(archive),
		outlook.FromShortRange(ingest.SourceOpenMeteo, short))

	targetDay, _ := rec.At(target)
	eco := outlook.Eco(targetDay.Precipitation, air)

	report := &Report{
		Location:      req.Location(),
		Date:          models.DateKey(target),
		EventType:     event,
		Weights:       outlook.WeightsFor(event),
		Series:        newSeriesView(rec),
		Trends:        outlook.CompareTrends(rec, outlook.DefaultTrendWindow),
		BestDays:      outlook.RankDays(rec.Records, event),
		Quality:       outlook.QualityByMetric(rec),
		Flags:         flags(rec),
		Comfort:       outlook.ComfortIndex(targetDay),
		Eco:           eco,
		Probabilities: probs,
	}

	if a.advisor != nil {
		advice, err := a.advisor.Advise(ctx, report)
		if err != nil {
			log.Printf("analysis: advisor failed: %v", err)
		} else {
			report.Advice = advice
		}
	}

	metrics.AnalysesTotal.WithLabelValues("ok").Inc()
	return report, nil
}

// history runs the sampler under the history timeout. Exceeding it, or
// having no samples, yields nil.
func (a *Analyzer) history(ctx context.Context, lat, lon float64, target time.Time) *models.Probabilities {
	hctx, cancel := context.WithTimeout(ctx, a.historyTimeout)
	defer cancel()

	p, err := history.Compute(hctx, a.sampler, lat, lon, target)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			log.Printf("analysis: history exceeded %s, omitting probabilities", a.historyTimeout)
		} else {
			log.Printf("analysis: history failed: %v", err)
		}
		return nil
	}
	return p
}

// Probabilities computes only the historical probabilities for date.
// A nil result with a nil error means no historical data.
func (a *Analyzer) Probabilities(ctx context.Context, lat, lon float64, date string) (*models.Probabilities, error) {
	if err := checkCoords(lat, lon); err != nil {
		return nil, err
	}
	target, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	p := a.history(ctx, lat, lon, target)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p, nil
}

// BestHours ranks the hours of date. A failed fetch yields an empty list.
func (a *Analyzer) BestHours(ctx context.Context, lat, lon float64, date string) ([]models.HourScore, error) {
	if err := checkCoords(lat, lon); err != nil {
		return nil, err
	}
	target, err := ParseDate(date)
	if err != nil {
		return nil, err
	}

	hours, err := a.src.Hourly.FetchHourly(ctx, lat, lon, target)
	if err != nil {
		log.Printf("analysis: hourly fetch failed: %v", err)
		return []models.HourScore{}, nil
	}
	return outlook.RankHours(hours), nil
}

func flags(r outlook.Reconciled) map[string][]string {
	out := make(map[string][]string)
	for _, rec := range r.Records {
		if f := ingest.ValidateRecord(rec); len(f) > 0 {
			out[models.DateKey(rec.Date)] = f
		}
	}
	return out
}
