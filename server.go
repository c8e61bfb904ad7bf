// Package routefollower serves route progress of followed vehicles over HTTP.
package routefollower

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/theoremus-urban-solutions/route-follower/internal/logger"
	"github.com/theoremus-urban-solutions/route-follower/metrics"
	"github.com/theoremus-urban-solutions/route-follower/tracking"
)

// maxBodyBytes bounds route documents and fixes posted to the server.
const maxBodyBytes = 10 << 20

type Options struct {
	Port      int
	Codespace string
	// ValidFor is how long published SIRI deliveries stay valid.
	ValidFor time.Duration
	// FeedTimestamp reports the header time of the latest positioning feed, 0 when none.
	FeedTimestamp func() int64
}

type Server struct {
	tracker    *tracking.Tracker
	opts       Options
	httpServer *http.Server
}

func NewServer(tracker *tracking.Tracker, opts Options) *Server {
	if opts.FeedTimestamp == nil {
		opts.FeedTimestamp = func() int64 { return 0 }
	}
	return &Server{tracker: tracker, opts: opts}
}

// Handler returns the routes of the server wrapped in access logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/vehicles", s.handleVehicles)
	mux.HandleFunc("GET /api/vehicles/{id}/progress", s.handleProgress)
	mux.HandleFunc("POST /api/vehicles/{id}/fixes", s.handleFix)
	mux.HandleFunc("GET /api/vehicles/{id}/route", s.handleGetRoute)
	mux.HandleFunc("PUT /api/vehicles/{id}/route", s.handlePutRoute)
	mux.HandleFunc("GET /api/siri/vehicle-monitoring.json", s.handleVehicleMonitoringJSON)
	mux.HandleFunc("GET /api/siri/vehicle-monitoring.xml", s.handleVehicleMonitoringXML)
	mux.Handle("GET /metrics", metrics.Handler())
	return logger.AccessMiddleware(logger.L())(mux)
}

// Start listens in the background; it returns once the listener goroutine is running.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.opts.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()
	slog.Info("server listening", "addr", addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// WaitForShutdown blocks until SIGINT or SIGTERM, cancels the background work
// and shuts the server down.
func (s *Server) WaitForShutdown(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	slog.Info("shutdown signal received")
	cancel()
	ctx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	if err := s.Shutdown(ctx); err != nil {
		slog.Error("server shutdown error", "error", err)
		return
	}
	slog.Info("server shut down successfully")
}
