package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lox/wayraweather/internal/analysis"
	"github.com/lox/wayraweather/internal/models"
	"github.com/lox/wayraweather/internal/store"
)

var validate = validator.New()

// Analyzer is the analysis surface the HTTP API exposes.
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (*analysis.Report, error)
	Probabilities(ctx context.Context, lat, lon float64, date string) (*models.Probabilities, error)
	BestHours(ctx context.Context, lat, lon float64, date string) ([]models.HourScore, error)
}

type Server struct {
	analyzer Analyzer
	store    *store.Store
	port     string
}

// NewServer returns a server for analyzer. store may be nil, in which case
// the ingest health endpoint reports 404.
func NewServer(analyzer Analyzer, store *store.Store, port string) *Server {
	return &Server{
		analyzer: analyzer,
		store:    store,
		port:     port,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("GET /api/probabilities", s.handleProbabilities)
	mux.HandleFunc("GET /api/best-hours", s.handleBestHours)
	mux.HandleFunc("GET /api/ingest-health", s.handleIngestHealth)
	return mux
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              ":" + s.port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
