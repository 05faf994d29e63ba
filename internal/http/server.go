package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/moodlog/moodlog/internal/logging"
)

// Idle keep-alive connections are cheap but not free; a client that has
// been silent this long gets disconnected.
const idleTimeout = 60 * time.Second

// Server owns the listener lifecycle: Start blocks until the listener
// fails or Shutdown drains it.
type Server struct {
	inner  *http.Server
	logger *logging.Logger
}

func NewServer(addr string, handler http.Handler, readTimeout, writeTimeout time.Duration, logger *logging.Logger) *Server {
	return &Server{
		inner: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			IdleTimeout:  idleTimeout,
		},
		logger: logger,
	}
}

// Start listens and serves until the listener fails or the server is shut
// down. A drain-triggered close is not an error.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.inner.Addr)

	if err := s.inner.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen on %s: %w", s.inner.Addr, err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests,
// bounded by ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("draining http server")

	if err := s.inner.Shutdown(ctx); err != nil {
		return fmt.Errorf("drain http server: %w", err)
	}

	s.logger.Info("http server stopped")
	return nil
}
