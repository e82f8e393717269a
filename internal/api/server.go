package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/probeworks/slaq/internal/runner"
	"github.com/probeworks/slaq/internal/storage"
)

// Server is the read-only HTTP status surface: health probes, configured
// signals, latest outcomes and the persisted indicator log.
type Server struct {
	runner *runner.Runner
	store  storage.IndicatorStore
	logger *slog.Logger
	server *http.Server
}

// NewServer creates a new API server
func NewServer(run *runner.Runner, store storage.IndicatorStore, addr string, logger *slog.Logger) *Server {
	s := &Server{
		runner: run,
		store:  store,
		logger: logger,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/v1/signals", s.handleSignals)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/records", s.handleRecords)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.loggingMiddleware(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting API server", slog.String("address", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")
	return s.server.Shutdown(ctx)
}

// handleHealth handles GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	respondJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// handleReady handles GET /readyz. Ready once at least one iteration has
// produced outcomes.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	defs := s.runner.Definitions()
	cacheSize := s.runner.Cache().Size()

	ready := len(defs) > 0 && cacheSize > 0
	var reasons []string

	if len(defs) == 0 {
		reasons = append(reasons, "no signals loaded")
	}
	if cacheSize == 0 {
		reasons = append(reasons, "no evaluations completed yet")
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}

	respondJSON(w, status, ReadyResponse{
		Ready:         ready,
		SignalsLoaded: len(defs),
		Reasons:       reasons,
	})
}

// handleSignals handles GET /v1/signals
func (s *Server) handleSignals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	defs := s.runner.Definitions()
	signals := make([]SignalResponse, 0, len(defs))
	for _, defWithFile := range defs {
		def := defWithFile.Definition
		signals = append(signals, SignalResponse{
			Name:             def.Metadata.Name,
			Owner:            def.Metadata.Owner,
			Description:      def.Metadata.Description,
			SLOTargetPercent: def.Spec.SLOTargetPercent,
		})
	}

	respondJSON(w, http.StatusOK, signals)
}

// handleStatus handles GET /v1/status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snapshot := s.runner.Cache().Snapshot()
	statuses := make([]StatusResponse, 0, len(snapshot))
	for _, outcome := range snapshot {
		statuses = append(statuses, StatusResponse{
			Name:        outcome.Name,
			SLIValue:    outcome.SLIValue,
			IsBad:       outcome.IsBad,
			DataQuality: outcome.Quality,
			Timestamp:   outcome.Timestamp,
			WindowStart: outcome.Window.Start,
			WindowEnd:   outcome.Window.End,
		})
	}

	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Name < statuses[j].Name
	})

	respondJSON(w, http.StatusOK, statuses)
}

// handleRecords handles GET /v1/records
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	filter := storage.RecordFilter{
		Name: r.URL.Query().Get("name"),
	}

	if v := r.URL.Query().Get("bad"); v == "true" || v == "1" {
		filter.OnlyBad = true
	}

	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
			return
		}
		filter.Limit = limit
	}

	if v := r.URL.Query().Get("since"); v != "" {
		since, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid since timestamp, want RFC3339"})
			return
		}
		filter.StartTime = &since
	}

	records, err := s.store.Records(r.Context(), filter)
	if err != nil {
		s.logger.Error("failed to query records", slog.Any("error", err))
		respondJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to query records"})
		return
	}

	out := make([]RecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, RecordResponse{
			ID:          rec.ID,
			Timestamp:   rec.Timestamp,
			Name:        rec.Name,
			SLOTarget:   rec.SLOTarget,
			SLIValue:    rec.SLIValue,
			IsBad:       rec.IsBad,
			Period:      rec.Period,
			DataQuality: rec.DataQuality,
			CreatedAt:   rec.CreatedAt,
		})
	}

	respondJSON(w, http.StatusOK, out)
}

// respondJSON writes a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// loggingMiddleware logs each request at debug level
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("elapsed", time.Since(start)))
	})
}
