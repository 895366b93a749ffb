// Package api provides the HTTP REST API and WebSocket server for the
// baby care tracker.
//
// It exposes event history, device mapping management, analytics, and
// live status to the add-on's web UI and any other HTTP consumer. The
// server runs behind Home Assistant ingress, which handles
// authentication before requests reach this process.
//
// The server follows the same lifecycle pattern as the other
// infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/babycare-core/internal/analytics"
	"github.com/nerrad567/babycare-core/internal/event"
	"github.com/nerrad567/babycare-core/internal/infrastructure/config"
	"github.com/nerrad567/babycare-core/internal/infrastructure/logging"
	"github.com/nerrad567/babycare-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/babycare-core/internal/mapping"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// EventStore is the event repository surface the API consumes.
// Implemented by event.SQLiteRepository.
type EventStore interface {
	Add(ctx context.Context, e event.NewEvent) (int64, error)
	Get(ctx context.Context, f event.Filter) ([]event.Event, error)
	GetByRange(ctx context.Context, start, end time.Time) ([]event.Event, error)
	Update(ctx context.Context, id int64, u event.Update) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

// MappingStore is the mapping repository surface the API consumes.
// Implemented by mapping.SQLiteRepository.
type MappingStore interface {
	Add(ctx context.Context, m mapping.NewMapping) (int64, error)
	Get(ctx context.Context, id int64) (mapping.Mapping, error)
	GetAll(ctx context.Context, enabledOnly bool) ([]mapping.Mapping, error)
	SetEnabled(ctx context.Context, id int64, enabled bool) error
	Delete(ctx context.Context, id int64) error
}

// HealthChecker is implemented by components that can report liveness.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config    config.APIConfig
	WS        config.WebSocketConfig
	Logger    *logging.Logger
	Events    EventStore
	Mappings  MappingStore
	Analytics *analytics.Engine
	Database  HealthChecker
	MQTT      *mqtt.Client // optional; health reports degraded without it
	Hub       *Hub         // optional; the server creates one if nil
	Version   string
}

// Server is the HTTP API server.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg       config.APIConfig
	wsCfg     config.WebSocketConfig
	logger    *logging.Logger
	events    EventStore
	mappings  MappingStore
	analytics *analytics.Engine
	database  HealthChecker
	mqtt      *mqtt.Client
	version   string

	server      *http.Server
	hub         *Hub
	externalHub bool
	cancel      context.CancelFunc
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Parameters:
//   - deps: Required dependencies (config, logger, stores, analytics)
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Events == nil {
		return nil, fmt.Errorf("event store is required")
	}
	if deps.Mappings == nil {
		return nil, fmt.Errorf("mapping store is required")
	}
	if deps.Analytics == nil {
		return nil, fmt.Errorf("analytics engine is required")
	}

	s := &Server{
		cfg:       deps.Config,
		wsCfg:     deps.WS,
		logger:    deps.Logger,
		events:    deps.Events,
		mappings:  deps.Mappings,
		analytics: deps.Analytics,
		database:  deps.Database,
		mqtt:      deps.MQTT,
		version:   deps.Version,
	}

	if deps.Hub != nil {
		s.hub = deps.Hub
		s.externalHub = true
	}

	return s, nil
}

// Hub returns the WebSocket hub, creating it on first use so callers
// can wire broadcasts before Start().
func (s *Server) Hub() *Hub {
	if s.hub == nil {
		s.hub = NewHub(s.wsCfg, s.logger)
	}
	return s.hub
}

// Start begins listening for HTTP connections.
//
// It starts the WebSocket hub and launches the HTTP listener in a
// background goroutine. The server is stopped with Close().
//
// Parameters:
//   - ctx: Context for background goroutine cancellation
//
// Returns:
//   - error: If the server fails to start (port in use, etc.)
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	if s.hub == nil {
		s.hub = NewHub(s.wsCfg, s.logger)
	}
	if !s.externalHub {
		go s.hub.Run(srvCtx)
	}

	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to gracefulShutdownTimeout for in-flight requests to
// complete, then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
