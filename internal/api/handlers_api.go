package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/lox/wayraweather/internal/analysis"
)

const maxBodyBytes = 1 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthStatus{Status: "ok", Audit: s.store != nil})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analysis.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	report, err := s.analyzer.Analyze(r.Context(), req)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleProbabilities(w http.ResponseWriter, r *http.Request) {
	q, err := parsePointQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	probs, err := s.analyzer.Probabilities(r.Context(), q.Lat, q.Lon, q.Date)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	if probs == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, probs)
}

func (s *Server) handleBestHours(w http.ResponseWriter, r *http.Request) {
	q, err := parsePointQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	hours, err := s.analyzer.BestHours(r.Context(), q.Lat, q.Lon, q.Date)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hours)
}

func (s *Server) handleIngestHealth(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, "fetch audit is disabled")
		return
	}

	q := ingestHealthQuery{Days: 7}
	if v := r.URL.Query().Get("days"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "days must be an integer")
			return
		}
		q.Days = days
	}
	if err := validate.Struct(q); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	summaries, err := s.store.GetIngestHealth(q.Days)
	if err != nil {
		log.Printf("api: ingest health: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to read ingest health")
		return
	}
	failures, err := s.store.GetRecentIngestErrors(20)
	if err != nil {
		log.Printf("api: recent ingest errors: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to read ingest errors")
		return
	}

	writeJSON(w, http.StatusOK, newIngestHealthView(q.Days, summaries, failures))
}

// writeAnalysisError maps request errors to 400 and everything else to 502.
func writeAnalysisError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, analysis.ErrInvalidDate), errors.Is(err, analysis.ErrInvalidLocation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.Canceled):
		log.Printf("api: request cancelled: %v", err)
		writeError(w, http.StatusServiceUnavailable, "request cancelled")
	default:
		log.Printf("api: analysis failed: %v", err)
		writeError(w, http.StatusBadGateway, "analysis failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
