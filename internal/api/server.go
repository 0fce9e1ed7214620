// Tribe Engine - Liebefeld Community Event Personalization
// Copyright 2026 Liebefeld Tribe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/liebefeld/tribe-engine

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/liebefeld/tribe-engine/internal/config"
	"github.com/liebefeld/tribe-engine/internal/logging"
)

// Server runs the HTTP API as a supervised service.
type Server struct {
	cfg    *config.ServerConfig
	server *http.Server
}

// NewServer builds the HTTP server around the assembled router.
func NewServer(cfg *config.ServerConfig, router http.Handler) *Server {
	return &Server{
		cfg: cfg,
		server: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       cfg.Timeout,
			WriteTimeout:      cfg.Timeout,
			IdleTimeout:       2 * cfg.Timeout,
		},
	}
}

// Serve runs the listener until the context is cancelled, then shuts down
// gracefully with a bounded drain period.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", s.server.Addr).Msg("http server listening")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			logging.Warn().Err(err).Msg("http server shutdown was not clean")
		}
		<-errCh
		logging.Info().Msg("http server stopped")
		return ctx.Err()
	}
}

// String names the service in the supervision tree.
func (s *Server) String() string { return "http-server" }
