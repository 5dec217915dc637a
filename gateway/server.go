// Copyright 2026 The Filebeam Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// Server serves the gateway handler on a TCP listener. Serve(ctx)
// blocks until the context is cancelled and in-flight requests drain.
type Server struct {
	address string
	handler http.Handler
	logger  *slog.Logger

	// shutdownTimeout is the maximum time to wait for active
	// requests to complete after the context is cancelled.
	shutdownTimeout time.Duration

	// ready is closed after the listener is bound and the server
	// is accepting connections.
	ready chan struct{}

	// addr is the resolved listen address, available after ready is
	// closed. Useful when the configured address uses port 0.
	addr net.Addr
}

// ServerConfig configures a Server.
type ServerConfig struct {
	// Address is the TCP listen address (e.g., ":8080"). Required.
	Address string

	// Handler is the HTTP handler for incoming requests. Required.
	Handler http.Handler

	// ShutdownTimeout is the maximum time to wait for in-flight
	// requests during graceful shutdown. Defaults to 10 seconds.
	ShutdownTimeout time.Duration

	// Logger is the structured logger. Required.
	Logger *slog.Logger
}

// NewServer creates a server that will listen on the configured TCP
// address. Call Serve to start accepting connections.
func NewServer(config ServerConfig) *Server {
	if config.Address == "" {
		panic("gateway.Server: Address is required")
	}
	if config.Handler == nil {
		panic("gateway.Server: Handler is required")
	}
	if config.Logger == nil {
		panic("gateway.Server: Logger is required")
	}

	timeout := config.ShutdownTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Server{
		address:         config.Address,
		handler:         config.Handler,
		logger:          config.Logger,
		shutdownTimeout: timeout,
		ready:           make(chan struct{}),
	}
}

// Ready returns a channel that is closed once the server is bound and
// accepting connections.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the resolved listen address. Only valid after Ready()
// is closed.
func (s *Server) Addr() net.Addr {
	return s.addr
}

// Serve starts accepting HTTP connections. Blocks until ctx is
// cancelled, then performs graceful shutdown.
func (s *Server) Serve(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.address, err)
	}
	s.addr = listener.Addr()
	close(s.ready)

	server := &http.Server{
		Handler: s.handler,

		// No WriteTimeout: a client streaming a multi-gigabyte file
		// over a slow link legitimately holds its connection for
		// hours. Read timeouts stay tight — requests are small.
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	s.logger.Info("gateway listening", "address", s.addr.String())

	serveDone := make(chan error, 1)
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveDone <- err
		}
		close(serveDone)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("gateway shutting down")
	case err := <-serveDone:
		if err != nil {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("gateway shutdown error", "error", err)
		return fmt.Errorf("gateway shutdown: %w", err)
	}

	s.logger.Info("gateway stopped")
	return nil
}
