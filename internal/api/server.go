// Package api exposes the status HTTP surface for a running harvest.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/economistry/repec-harvester/internal/pipeline"
)

// ProgressSource yields a point-in-time snapshot of the harvest.
type ProgressSource interface {
	Progress() pipeline.Progress
}

// Server wires the status routes.
type Server struct {
	router chi.Router
	src    ProgressSource
}

// NewServer constructs a Server around a progress source.
func NewServer(src ProgressSource) *Server {
	s := &Server{src: src}
	r := chi.NewRouter()
	r.Get("/healthz", s.healthz)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/progress", s.progress)
	s.router = r
	return s
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) progress(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.src.Progress()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
