package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"studytracker/internal/log"
)

// Server wraps http.Server with the timeouts the tracker API runs under.
type Server struct {
	http.Server
	logger *log.Logger
}

// NewServer returns a ready-to-run server for handler on addr.
func NewServer(addr string, handler http.Handler, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Wrap(nil, log.ComponentHTTP)
	}
	return &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
			MaxHeaderBytes:    1 << 16,
		},
		logger: logger.WithComponent(log.ComponentHTTP),
	}
}

// Start serves until the server is shut down. It returns nil after a clean
// Shutdown.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", "addr", s.Addr)
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.InfoContext(ctx, "HTTP server shutting down")
	return s.Server.Shutdown(ctx)
}
