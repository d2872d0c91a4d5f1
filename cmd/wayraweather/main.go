package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/lox/wayraweather/internal/advisor"
	"github.com/lox/wayraweather/internal/analysis"
	"github.com/lox/wayraweather/internal/api"
	"github.com/lox/wayraweather/internal/httputil"
	"github.com/lox/wayraweather/internal/ingest"
	"github.com/lox/wayraweather/internal/store"
)

type Globals struct {
	DB                 string        `help:"SQLite database for the fetch audit log (empty disables it)." default:"data/wayraweather.db" env:"WAYRA_DB"`
	WAQIToken          string        `name:"waqi-token" help:"World Air Quality Index API token." default:"demo" env:"WAQI_TOKEN"`
	OpenAIKey          string        `name:"openai-key" help:"OpenAI API key for advice (optional)." env:"OPENAI_API_KEY"`
	HistoryTimeout     time.Duration `help:"Budget for the historical probability computation." default:"45s" env:"WAYRA_HISTORY_TIMEOUT"`
	HistoryConcurrency int           `help:"Concurrent historical year fetches." default:"6" env:"WAYRA_HISTORY_CONCURRENCY"`
	HTTPTimeout        time.Duration `name:"http-timeout" help:"Timeout for each provider request." default:"30s" env:"WAYRA_HTTP_TIMEOUT"`
}

type CLI struct {
	Globals

	Serve         ServeCmd         `cmd:"" help:"Run the HTTP API."`
	Analyze       AnalyzeCmd       `cmd:"" help:"Print a full analysis report."`
	Probabilities ProbabilitiesCmd `cmd:"" help:"Print historical threshold probabilities."`
	Hours         HoursCmd         `cmd:"" help:"Print the best hours of a day."`
}

type PointFlags struct {
	Lat  float64 `help:"Latitude." required:""`
	Lon  float64 `help:"Longitude." required:""`
	Date string  `help:"Target date (YYYY-MM-DD)." required:""`
}

type ServeCmd struct {
	Port string `help:"HTTP server port." default:"8080" env:"WAYRA_PORT"`
}

func (c *ServeCmd) Run(ctx context.Context, app *App) error {
	server := api.NewServer(app.analyzer, app.store, c.Port)
	log.Printf("starting server on :%s", c.Port)
	return server.Run(ctx)
}

type AnalyzeCmd struct {
	PointFlags `embed:""`
	Event      string `help:"Event type (trip, parade, hike, fishing, wedding, picnic)." default:"trip"`
	Name       string `help:"Place name shown in the report."`
}

func (c *AnalyzeCmd) Run(ctx context.Context, app *App) error {
	report, err := app.analyzer.Analyze(ctx, analysis.Request{
		Latitude:  c.Lat,
		Longitude: c.Lon,
		Name:      c.Name,
		Date:      c.Date,
		EventType: c.Event,
	})
	if err != nil {
		return err
	}
	return printJSON(report)
}

type ProbabilitiesCmd struct {
	PointFlags `embed:""`
}

func (c *ProbabilitiesCmd) Run(ctx context.Context, app *App) error {
	p, err := app.analyzer.Probabilities(ctx, c.Lat, c.Lon, c.Date)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("no historical data for %s", c.Date)
	}
	return printJSON(p)
}

type HoursCmd struct {
	PointFlags `embed:""`
}

func (c *HoursCmd) Run(ctx context.Context, app *App) error {
	hours, err := app.analyzer.BestHours(ctx, c.Lat, c.Lon, c.Date)
	if err != nil {
		return err
	}
	return printJSON(hours)
}

// App holds the wired dependencies shared by every command.
type App struct {
	analyzer *analysis.Analyzer
	store    *store.Store
}

func newApp(g Globals) (*App, error) {
	app := &App{}

	// rec stays a nil interface unless a store is opened.
	var rec ingest.RunRecorder
	if g.DB != "" {
		if err := os.MkdirAll(filepath.Dir(g.DB), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		st, err := store.Open(g.DB)
		if err != nil {
			return nil, err
		}
		app.store = st
		rec = st
	} else {
		log.Println("fetch audit disabled")
	}

	client := httputil.NewClient(g.HTTPTimeout)
	clients := ingest.Audit(rec,
		ingest.NewPowerClient(client),
		ingest.NewOpenMeteoClient(client))

	cfg := analysis.Config{
		HistoryTimeout:     g.HistoryTimeout,
		HistoryConcurrency: g.HistoryConcurrency,
	}
	if adv, err := advisor.New(g.OpenAIKey); err != nil {
		log.Printf("advice disabled: %v", err)
	} else {
		cfg.Advisor = adv
	}

	app.analyzer = analysis.New(analysis.Sources{
		Archive:    clients.Archive,
		History:    clients.History,
		ShortRange: clients.ShortRange,
		Hourly:     clients.Hourly,
		AirQuality: ingest.NewWAQIClient(client, g.WAQIToken),
	}, cfg)
	return app, nil
}

func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("load .env: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("wayraweather"),
		kong.Description("Reconciled weather outlooks and historical probabilities for outdoor events."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	app, err := newApp(cli.Globals)
	kctx.FatalIfErrorf(err)
	defer app.Close()

	if err := kctx.Run(app); err != nil {
		app.Close()
		log.Fatalf("%s: %v", kctx.Command(), err)
	}
}
