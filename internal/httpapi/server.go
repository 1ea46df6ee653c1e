// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

package httpapi

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/samber/oops"

	"github.com/tollgate/tollgate/internal/auth"
	"github.com/tollgate/tollgate/internal/observability"
)

// Server serves the authentication HTTP API.
type Server struct {
	addr       string
	registrar  Registrar
	sessions   SessionIssuer
	resolver   IdentityResolver
	metrics    *observability.Metrics
	logger     *slog.Logger
	tlsCert    string
	tlsKey     string
	listener   net.Listener
	httpServer *http.Server
	running    atomic.Bool
}

// NewServer creates a new API server. Metrics may be nil when the
// observability endpoint is disabled.
func NewServer(addr string, registrar Registrar, sessions SessionIssuer, resolver IdentityResolver, metrics *observability.Metrics, logger *slog.Logger) (*Server, error) {
	if registrar == nil {
		return nil, oops.Errorf("registrar is required")
	}
	if sessions == nil {
		return nil, oops.Errorf("session issuer is required")
	}
	if resolver == nil {
		return nil, oops.Errorf("identity resolver is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		addr:      addr,
		registrar: registrar,
		sessions:  sessions,
		resolver:  resolver,
		metrics:   metrics,
		logger:    logger,
	}, nil
}

// EnableTLS configures the server to serve HTTPS with the given certificate
// and key files. Must be called before Start.
func (s *Server) EnableTLS(certFile, keyFile string) {
	s.tlsCert = certFile
	s.tlsKey = keyFile
}

// Router builds the chi router for the auth endpoints.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Get("/me", s.handleMe)
		r.Get("/refresh-access-token", s.handleRefresh)
	})

	return r
}

// Start begins serving the API. It returns an error channel that receives
// any serve error after startup; the channel is closed on graceful stop.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("api server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)
		var serveErr error
		if s.tlsCert != "" {
			serveErr = httpSrv.ServeTLS(listener, s.tlsCert, s.tlsKey)
		} else {
			serveErr = httpSrv.Serve(listener)
		}
		if serveErr != nil && serveErr != http.ErrServerClosed {
			s.logger.Error("api server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.logger.Info("api server started",
		"addr", listener.Addr().String(),
		"tls", s.tlsCert != "")
	return errCh, nil
}

// Stop gracefully shuts down the API server.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown_api_server").Wrap(err)
		}
	}

	s.logger.Info("api server stopped")
	return nil
}

// Addr returns the address the server is listening on.
// Returns empty string if not running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

func (s *Server) recordLogin(status string) {
	if s.metrics != nil {
		s.metrics.LoginsTotal.WithLabelValues(status).Inc()
	}
}

func (s *Server) recordRegistration(status string) {
	if s.metrics != nil {
		s.metrics.RegistrationsTotal.WithLabelValues(status).Inc()
	}
}

func (s *Server) recordTokenIssued(kind auth.TokenKind) {
	if s.metrics != nil {
		s.metrics.TokensIssuedTotal.WithLabelValues(string(kind)).Inc()
	}
}

func (s *Server) recordRejection(reason string) {
	if s.metrics != nil {
		s.metrics.TokenRejections.WithLabelValues(reason).Inc()
	}
}
