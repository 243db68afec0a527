// Package server exposes the REST API over the application core
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bobmcallan/scry/internal/app"
	"github.com/bobmcallan/scry/internal/common"
	"github.com/bobmcallan/scry/internal/signals"
)

// Server wraps the HTTP server and application reference
type Server struct {
	app      *app.App
	server   *http.Server
	logger   *common.Logger
	computer *signals.Computer
}

// NewServer creates a new REST API server
func NewServer(a *app.App) *Server {
	s := &Server{
		app:      a,
		logger:   a.Logger,
		computer: signals.NewComputer(),
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", a.Config.Server.Host, a.Config.Server.Port),
		Handler:      requestLogger(mux, a.Logger),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the HTTP handler for testing
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server (blocking)
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("Starting REST API server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// registerRoutes sets up all REST API routes on the mux
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Scored trades
	mux.HandleFunc("/api/trades/export", s.handleTradesExport)
	mux.HandleFunc("/api/trades/", s.handleTradeByID)
	mux.HandleFunc("/api/trades", s.handleTradesList)

	// Analysis
	mux.HandleFunc("/api/analyze", s.handleAnalyze)
	mux.HandleFunc("/api/scan/run", s.handleScanRun)

	// Charts
	mux.HandleFunc("/api/charts/", s.handleChart)
}

// requestLogger logs each request with latency
func requestLogger(next http.Handler, logger *common.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	})
}
