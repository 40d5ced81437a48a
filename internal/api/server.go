// SPDX-License-Identifier: MIT

// Package api serves the watch-mode status surface: health, the last
// run report, the committed playlist, and metrics.
package api

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/m3uforge/m3uforge/internal/export"
	"github.com/m3uforge/m3uforge/internal/pipeline"
)

// Server holds the last finished run report and serves read-only
// views over it and the committed outputs.
type Server struct {
	dataDir string

	mu   sync.RWMutex
	last *pipeline.Report
}

// NewServer returns a server reading committed outputs from dataDir.
func NewServer(dataDir string) *Server {
	return &Server{dataDir: dataDir}
}

// SetReport publishes the report of the latest finished run.
func (s *Server) SetReport(r *pipeline.Report) {
	s.mu.Lock()
	s.last = r
	s.mu.Unlock()
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(httprate.LimitByIP(120, time.Minute))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/status", s.handleStatus)
	r.Get("/playlist.m3u", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "audio/x-mpegurl")
		http.ServeFile(w, req, filepath.Join(s.dataDir, export.FileNames[export.FormatM3U]))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	last := s.last
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	if last == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "no completed run yet"})
		return
	}
	_ = json.NewEncoder(w).Encode(last)
}
