package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/nerrad567/entrance-cockpit-mock/internal/device"
	"github.com/nerrad567/entrance-cockpit-mock/internal/directory"
	"github.com/nerrad567/entrance-cockpit-mock/internal/generator"
	"github.com/nerrad567/entrance-cockpit-mock/internal/infrastructure/config"
	"github.com/nerrad567/entrance-cockpit-mock/internal/infrastructure/logging"
	"github.com/nerrad567/entrance-cockpit-mock/internal/journal"
	"github.com/nerrad567/entrance-cockpit-mock/internal/monitoring"
	"github.com/nerrad567/entrance-cockpit-mock/internal/user"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// HealthChecker is implemented by infrastructure the /health endpoint probes.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config    config.APIConfig
	WS        config.WebSocketConfig
	Logger    *logging.Logger
	Hub       *monitoring.Hub
	Generator *generator.Generator
	Directory *directory.Directory
	Devices   *device.Registry
	Users     *user.Directory

	// Journal backs the logs endpoints. Optional: without it logs carry
	// sampled users only.
	Journal journal.Repository

	// HealthChecks are probed by /health, keyed by component name.
	HealthChecks map[string]HealthChecker

	Version string
}

// Server is the HTTP API server of the mock.
//
// It manages the HTTP listener, routes, middleware and the WebSocket
// transport. The server is created with New() and started with Start().
type Server struct {
	cfg          config.APIConfig
	wsCfg        config.WebSocketConfig
	logger       *logging.Logger
	hub          *monitoring.Hub
	gen          *generator.Generator
	dir          *directory.Directory
	devices      *device.Registry
	users        *user.Directory
	journal      journal.Repository
	healthChecks map[string]HealthChecker
	version      string

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// New creates a new API server with the given dependencies.
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	switch {
	case deps.Logger == nil:
		return nil, errors.New("logger is required")
	case deps.Hub == nil:
		return nil, errors.New("monitoring hub is required")
	case deps.Generator == nil:
		return nil, errors.New("event generator is required")
	case deps.Directory == nil:
		return nil, errors.New("directory is required")
	case deps.Devices == nil:
		return nil, errors.New("device registry is required")
	case deps.Users == nil:
		return nil, errors.New("user directory is required")
	}

	wsCfg := deps.WS
	if wsCfg.Path == "" {
		wsCfg.Path = "/events"
	}

	return &Server{
		cfg:          deps.Config,
		wsCfg:        wsCfg,
		logger:       deps.Logger,
		hub:          deps.Hub,
		gen:          deps.Generator,
		dir:          deps.Directory,
		devices:      deps.Devices,
		users:        deps.Users,
		journal:      deps.Journal,
		healthChecks: deps.HealthChecks,
		version:      deps.Version,
	}, nil
}

// Handler returns the fully wired router. Useful for tests that serve it
// through httptest.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// Start binds the listener and serves in a background goroutine.
// A bind failure (port in use) is returned synchronously.
func (s *Server) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return errors.New("api server already started")
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	s.listener = ln
	s.server = &http.Server{
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	s.logger.Info("API server listening", "address", ln.Addr().String(), "events_path", s.wsCfg.Path)

	srv := s.server
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Close gracefully shuts down the API server.
//
// Observer sessions are closed first (hijacked WebSocket connections are
// not tracked by http.Server), then in-flight requests get up to 10
// seconds to complete.
func (s *Server) Close() error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	s.hub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server == nil {
		return errors.New("api server not started")
	}
	return nil
}
