package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"lendit/internal/config"

	"github.com/rs/zerolog"
)

// HTTPServer exposes the booking, item and user operations over a
// plain net/http mux. Identity comes from the X-Sharer-User-Id header
// and is trusted as given.
type HTTPServer struct {
	cfg    config.HTTPConfig
	server *http.Server
	log    zerolog.Logger
}

func NewHTTPServer(cfg config.HTTPConfig, handlers *Handlers, logger *zerolog.Logger) *HTTPServer {
	mux := http.NewServeMux()
	handlers.Register(mux)

	limiter := newRateLimiter(cfg.RateLimit)
	handler := requestIDMiddleware(loggingMiddleware(logger, limiter.Wrap(mux)))

	serverLogger := logger.With().Str("component", "http").Logger()
	return &HTTPServer{
		cfg: cfg,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      15 * time.Second,
		},
		log: serverLogger,
	}
}

func (s *HTTPServer) Addr() string {
	return s.server.Addr
}

func (s *HTTPServer) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
