// Package http serves the pipeline's reports read-only over HTTP.
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/aretw0/readiness/internal/logging"
	"github.com/aretw0/readiness/pkg/orchestrator"
	"github.com/aretw0/readiness/pkg/pipeline"
	"github.com/aretw0/readiness/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StageView is the JSON representation of one pipeline node.
type StageView struct {
	ID       string   `json:"id"`
	Kind     string   `json:"kind"`
	Output   string   `json:"output"`
	Exists   bool     `json:"exists"`
	Verdict  string   `json:"verdict"`
	Upstream []string `json:"upstream"`
	RunBy    []string `json:"run_by,omitempty"`
}

// Server exposes the artifacts of a pipeline graph.
type Server struct {
	Store   ports.ArtifactStore
	Graph   pipeline.Graph
	Metrics *orchestrator.Metrics
	Logger  *slog.Logger
	Version string
}

// NewHandler creates the HTTP handler for s.
func NewHandler(s *Server) http.Handler {
	if s.Logger == nil {
		s.Logger = logging.NewNop()
	}
	if s.Metrics == nil {
		s.Metrics = orchestrator.NewMetrics()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.GetHealth)
	r.Get("/stages", s.ListStages)
	r.Get("/stages/{id}", s.GetStage)
	r.Get("/stages/{id}/report", s.GetReport)
	r.Get("/graph", s.GetGraph)
	r.Get("/metrics", s.GetMetrics)
	return r
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok", "version": s.Version})
}

func (s *Server) views(r *http.Request) ([]StageView, error) {
	overlay, err := pipeline.ReadOverlay(r.Context(), s.Store, s.Graph)
	if err != nil {
		return nil, err
	}

	views := make([]StageView, 0, len(s.Graph.Nodes))
	for _, n := range s.Graph.Nodes {
		v, exists := overlay.Verdicts[n.ID]
		upstream := make([]string, 0)
		for _, e := range s.Graph.Upstream(n.ID) {
			upstream = append(upstream, e.From)
		}
		view := StageView{
			ID:       n.ID,
			Kind:     string(n.Kind),
			Output:   n.Output,
			Exists:   exists,
			Verdict:  "missing",
			Upstream: upstream,
			RunBy:    s.Graph.RunBy(n.ID),
		}
		if exists {
			view.Verdict = v.OrUnknown()
		}
		views = append(views, view)
	}
	return views, nil
}

// ListStages handles GET /stages.
func (s *Server) ListStages(w http.ResponseWriter, r *http.Request) {
	views, err := s.views(r)
	if err != nil {
		s.fail(w, "failed to read artifacts", err)
		return
	}
	s.writeJSON(w, views)
}

// GetStage handles GET /stages/{id}.
func (s *Server) GetStage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	views, err := s.views(r)
	if err != nil {
		s.fail(w, "failed to read artifacts", err)
		return
	}
	for _, v := range views {
		if v.ID == id {
			s.writeJSON(w, v)
			return
		}
	}
	http.Error(w, "unknown stage", http.StatusNotFound)
}

// GetReport handles GET /stages/{id}/report and returns the raw markdown.
func (s *Server) GetReport(w http.ResponseWriter, r *http.Request) {
	node, ok := s.Graph.Node(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "unknown stage", http.StatusNotFound)
		return
	}
	a, err := s.Store.Read(r.Context(), node.Output)
	if err != nil {
		s.fail(w, "failed to read report", err)
		return
	}
	if !a.Exists {
		http.Error(w, "report not generated yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	if _, err := w.Write([]byte(a.Content)); err != nil {
		s.Logger.Warn("report write failed", "stage", node.ID, "err", err)
	}
}

// GetGraph handles GET /graph and returns mermaid with the current verdicts.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	overlay, err := pipeline.ReadOverlay(r.Context(), s.Store, s.Graph)
	if err != nil {
		s.fail(w, "failed to read artifacts", err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(pipeline.Mermaid(s.Graph, overlay)))
}

// GetMetrics refreshes the per-stage gauges from disk, then serves the registry.
func (s *Server) GetMetrics(w http.ResponseWriter, r *http.Request) {
	overlay, err := pipeline.ReadOverlay(r.Context(), s.Store, s.Graph)
	if err != nil {
		s.fail(w, "failed to read artifacts", err)
		return
	}
	for id, v := range overlay.Verdicts {
		s.Metrics.SetCurrent(id, v)
	}
	promhttp.HandlerFor(s.Metrics.Registry(), promhttp.HandlerOpts{}).ServeHTTP(w, r)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Warn("response encode failed", "err", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, msg string, err error) {
	s.Logger.Error(msg, "err", err)
	http.Error(w, msg, http.StatusInternalServerError)
}
