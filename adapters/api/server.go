// Package api serves stored curation workflows and their run reports over
// HTTP.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	reportadapter "molcure/adapters/report"
	"molcure/domain/report"
	"molcure/internal"
	"molcure/ports"
)

// Server exposes workflow documents and rendered reports.
type Server struct {
	router *chi.Mux
	repo   ports.WorkflowRepository
	logger *internal.Logger
}

// NewServer creates the report server over a workflow repository.
func NewServer(repo ports.WorkflowRepository, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.NewDefaultLogger()
	}
	s := &Server{
		router: chi.NewRouter(),
		repo:   repo,
		logger: logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/api/workflows", s.handleListWorkflows)
	s.router.Get("/api/workflows/{id}", s.handleGetWorkflow)
	s.router.Get("/workflows/{id}/report", s.handleRenderReport)
}

// ListenAndServe blocks serving HTTP on the given port.
func (s *Server) ListenAndServe(port string) error {
	s.logger.Info("Report server listening on :%s", port)
	return http.ListenAndServe(":"+port, s.router)
}

// Handler returns the underlying HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

func (s *Server) handleListWorkflows(w http.ResponseWriter, r *http.Request) {
	workflows, err := s.repo.ListWorkflows(r.Context(), 100)
	if err != nil {
		s.logger.Error("listing workflows: %v", err)
		http.Error(w, "failed to list workflows", http.StatusInternalServerError)
		return
	}

	type entry struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	out := make([]entry, 0, len(workflows))
	for _, wf := range workflows {
		out = append(out, entry{ID: wf.ID.String(), Name: wf.Name})
	}
	writeJSON(w, out)
}

func (s *Server) handleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid workflow id", http.StatusBadRequest)
		return
	}

	record, err := s.repo.GetWorkflow(r.Context(), id)
	if err != nil {
		http.Error(w, "workflow not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(record.Document)
}

func (s *Server) handleRenderReport(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid workflow id", http.StatusBadRequest)
		return
	}

	run, err := s.repo.GetLatestRun(r.Context(), id)
	if err != nil {
		s.logger.Error("loading run for %s: %v", id, err)
		http.Error(w, "failed to load run", http.StatusInternalServerError)
		return
	}
	if run == nil {
		http.Error(w, "no runs recorded for this workflow", http.StatusNotFound)
		return
	}

	var rep report.Report
	if err := json.Unmarshal(run.Report, &rep); err != nil {
		s.logger.Error("decoding report %s: %v", run.RunID, err)
		http.Error(w, "stored report is unreadable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := reportadapter.NewHTMLBroadcaster(w).Broadcast(&rep); err != nil {
		s.logger.Error("rendering report %s: %v", run.RunID, err)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encoding failed", http.StatusInternalServerError)
	}
}
