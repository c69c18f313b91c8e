// Package server exposes the appraisal pipeline over HTTP: a JSON API for
// one-shot analyses and run history, plus a server-sent-events stream for
// per-stage progress.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/appraisal-cli/internal/analyzer"
	"github.com/sells-group/appraisal-cli/internal/model"
	"github.com/sells-group/appraisal-cli/internal/store"
)

// Appraiser runs one full domain analysis. *analyzer.Analyzer satisfies it.
type Appraiser interface {
	Analyze(ctx context.Context, domain string, onStage func(analyzer.Stage)) (*model.DomainAnalysis, error)
}

// Server handles the HTTP API.
type Server struct {
	appraiser Appraiser
	store     store.Store
}

// New creates a server over the given appraiser and run store.
func New(a Appraiser, st store.Store) *Server {
	return &Server{appraiser: a, store: st}
}

// Routes builds the router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/analyze/{domain}/stream", s.handleAnalyzeStream)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type analyzeRequest struct {
	Domain string `json:"domain"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.runTracked(r.Context(), req.Domain, nil)
	if err != nil {
		if errors.Is(err, analyzer.ErrEmptyDomain) {
			writeError(w, http.StatusBadRequest, "domain is required")
			return
		}
		zap.L().Error("analyze request failed", zap.String("domain", req.Domain), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleAnalyzeStream streams stage progress as SSE events, ending with the
// full analysis record.
func (s *Server) handleAnalyzeStream(w http.ResponseWriter, r *http.Request) {
	domain := chi.URLParam(r, "domain")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// Stage callbacks fire inside the analysis; relay them through a
	// buffered channel so the network write never blocks settlement.
	events := make(chan analyzer.StageEvent, len(analyzer.Stages))

	type outcome struct {
		result *model.DomainAnalysis
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		result, err := s.runTracked(r.Context(), domain, func(st analyzer.Stage) {
			events <- analyzer.StageEvent{Domain: domain, Stage: st}
		})
		close(events)
		done <- outcome{result: result, err: err}
	}()

	for ev := range events {
		writeSSE(w, "stage", ev)
		flusher.Flush()
	}

	out := <-done
	if out.err != nil {
		writeSSE(w, "error", map[string]string{"error": out.err.Error()})
		flusher.Flush()
		return
	}
	writeSSE(w, "result", out.result)
	flusher.Flush()
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.RunFilter{
		Status: model.RunStatus(q.Get("status")),
		Domain: q.Get("domain"),
	}
	if limit := q.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = n
	}

	runs, err := s.store.ListRuns(r.Context(), filter)
	if err != nil {
		zap.L().Error("list runs failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list runs failed")
		return
	}
	if runs == nil {
		runs = []model.AnalysisRun{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		zap.L().Error("get run failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "get run failed")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// runTracked runs an analysis and records its lifecycle in the store. Store
// failures are logged, not surfaced: history is secondary to the result.
func (s *Server) runTracked(ctx context.Context, domain string, onStage func(analyzer.Stage)) (*model.DomainAnalysis, error) {
	var runID string
	if normalized := analyzer.Normalize(domain); s.store != nil && normalized != "" {
		if run, err := s.store.CreateRun(ctx, normalized); err != nil {
			zap.L().Warn("create run failed", zap.String("domain", domain), zap.Error(err))
		} else {
			runID = run.ID
		}
	}

	result, err := s.appraiser.Analyze(ctx, domain, onStage)
	if runID != "" {
		// Persist the outcome even when the request context is gone.
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err != nil {
			if sErr := s.store.FailRun(sctx, runID, err.Error()); sErr != nil {
				zap.L().Warn("fail run failed", zap.String("run_id", runID), zap.Error(sErr))
			}
		} else if sErr := s.store.CompleteRun(sctx, runID, result); sErr != nil {
			zap.L().Warn("complete run failed", zap.String("run_id", runID), zap.Error(sErr))
		}
	}
	return result, err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("write response failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeSSE(w http.ResponseWriter, event string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		zap.L().Warn("marshal sse event failed", zap.Error(err))
		return
	}
	_, _ = w.Write([]byte("event: " + event + "\ndata: " + string(data) + "\n\n"))
}
