// Package server exposes the augmentation pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/groundwire/groundwire/pkg/augment"
	"github.com/groundwire/groundwire/pkg/bundle"
	"github.com/groundwire/groundwire/pkg/config"
	"github.com/groundwire/groundwire/pkg/source"
	"github.com/groundwire/groundwire/pkg/tools"
)

// Server serves the augmentation API. One instance per process.
type Server struct {
	httpServer *http.Server
	service    *augment.Service
	tools      *tools.Registry
	logger     *slog.Logger
}

// Options tune optional serving surfaces.
type Options struct {
	// Metrics exposes /metrics in Prometheus text format.
	Metrics bool
}

func NewServer(cfg *config.ServerConfig, svc *augment.Service, reg *tools.Registry, opts Options) *Server {
	s := &Server{
		service: svc,
		tools:   reg,
		logger:  slog.Default().With("component", "server"),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Post("/v1/augment", s.handleAugment)
	r.Get("/v1/tools", s.handleTools)
	r.Get("/healthz", s.handleHealth)
	if opts.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	s.httpServer = &http.Server{
		Addr:              cfg.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed handler, used directly in tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start blocks serving until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.httpServer.Shutdown(ctx)
}

type augmentRequest struct {
	Text    string            `json:"text"`
	Context map[string]string `json:"context,omitempty"`
}

type augmentResponse struct {
	Bundle bundle.Bundle `json:"bundle"`
	Chars  int           `json:"chars"`
	Empty  bool          `json:"empty"`
}

func (s *Server) handleAugment(w http.ResponseWriter, r *http.Request) {
	var req augmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	b := s.service.Augment(r.Context(), source.Message{Text: req.Text, Context: req.Context})

	writeJSON(w, http.StatusOK, augmentResponse{
		Bundle: b,
		Chars:  b.Chars(),
		Empty:  b.Empty(),
	})
}

type toolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (s *Server) handleTools(w http.ResponseWriter, _ *http.Request) {
	descriptors := s.tools.List()
	infos := make([]toolInfo, 0, len(descriptors))
	for _, d := range descriptors {
		infos = append(infos, toolInfo{Name: d.Name, Description: d.Description})
	}
	writeJSON(w, http.StatusOK, map[string]any{"tools": infos})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
