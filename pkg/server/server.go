// Package server hosts the registrar GraphQL endpoint together with the
// playground, health and metrics routes.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/99designs/gqlgen/graphql/playground"

	"github.com/getmockd/registrar/pkg/graphql"
	"github.com/getmockd/registrar/pkg/logging"
)

// Default timeouts.
const (
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 5 * time.Second
)

// Fixed routes.
const (
	HealthPath  = "/healthz"
	MetricsPath = "/metrics"
)

// Config holds listener settings.
type Config struct {
	// Host to bind. Empty binds every interface.
	Host string
	// Port to listen on. Zero picks a free port.
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// Playground serves GraphiQL at "/".
	Playground bool
}

// Server is the registrar HTTP server.
type Server struct {
	cfg     Config
	graphql *graphql.Handler
	metrics http.Handler
	log     *slog.Logger

	mux        *http.ServeMux
	httpServer *http.Server

	mu        sync.Mutex
	listener  net.Listener
	startTime time.Time
	errCh     chan error
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMetrics serves h at MetricsPath.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// New creates a server for the given GraphQL handler.
func New(cfg Config, gql *graphql.Handler, opts ...Option) *Server {
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}

	s := &Server{
		cfg:     cfg,
		graphql: gql,
		log:     logging.Nop(),
		mux:     http.NewServeMux(),
		errCh:   make(chan error, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerRoutes()

	s.httpServer = &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, fmt.Sprint(cfg.Port)),
		Handler:           s.mux,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}
	return s
}

func (s *Server) registerRoutes() {
	path := s.graphql.Pattern()
	s.mux.Handle(path, s.graphql)
	s.mux.HandleFunc("GET "+HealthPath, s.handleHealth)
	if s.metrics != nil {
		s.mux.Handle("GET "+MetricsPath, s.metrics)
	}
	if s.cfg.Playground && path != "/" {
		s.mux.Handle("GET /{$}", playground.Handler("Registrar GraphQL Playground", path))
	}
}

// Handler returns the routing handler without starting a listener.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start binds the listener and serves in the background. Serve failures are
// delivered on Err.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return errors.New("server already started")
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	s.listener = ln
	s.startTime = time.Now()

	s.log.Info("starting GraphQL server",
		"addr", ln.Addr().String(),
		"path", s.graphql.Pattern(),
		"playground", s.cfg.Playground,
		"metrics", s.metrics != nil)

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("server error", "error", err)
			s.errCh <- err
		}
	}()
	return nil
}

// Err reports a fatal serve error.
func (s *Server) Err() <-chan error {
	return s.errCh
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

// URL returns the GraphQL endpoint URL of a started server.
func (s *Server) URL() string {
	addr := s.Addr()
	host, port, err := net.SplitHostPort(addr)
	if err == nil && (host == "" || host == "::" || host == "0.0.0.0") {
		addr = net.JoinHostPort("localhost", port)
	}
	return "http://" + addr + s.graphql.Pattern()
}

// Uptime returns the time since Start, or zero if not started.
func (s *Server) Uptime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startTime.IsZero() {
		return 0
	}
	return time.Since(s.startTime)
}

// Shutdown stops accepting connections and waits for active requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	started := s.listener != nil
	s.mu.Unlock()
	if !started {
		return nil
	}

	s.log.Info("shutting down GraphQL server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
