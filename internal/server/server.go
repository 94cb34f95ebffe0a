// Package server implements the REST persistence service for saved pages.
//
// It serves the project and template collections stored by the database
// package, plus health and metrics endpoints:
//
//	GET    /api/projects        list (optional ?q= search)
//	GET    /api/projects/:id    fetch one
//	POST   /api/projects        create
//	PUT    /api/projects/:id    partial update
//	DELETE /api/projects/:id    remove
//	GET    /api/templates       list
//	GET    /api/templates/:id   fetch one
//	POST   /api/templates       create
//	GET    /health
//	GET    /api/metrics
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/Mr-Dark-debug/lowcode/internal/database"
)

// Service defines the lifecycle of the HTTP service.
// This abstraction allows for mocking in integration tests.
type Service interface {
	// Start begins listening for requests.
	Start(ctx context.Context) error
	// Stop gracefully shuts down the server, draining in-flight requests.
	Stop() error
	// Metrics returns the current request metrics.
	Metrics() Metrics
}

// Metrics tracks request volume and outcomes.
type Metrics struct {
	Requests         int64 `json:"requests"`
	ClientErrors     int64 `json:"client_errors"`
	ServerErrors     int64 `json:"server_errors"`
	ProjectsCreated  int64 `json:"projects_created"`
	ProjectsUpdated  int64 `json:"projects_updated"`
	ProjectsDeleted  int64 `json:"projects_deleted"`
	TemplatesCreated int64 `json:"templates_created"`
	Uptime           int64 `json:"uptime_seconds"`
}

// Config holds configuration for the HTTP service.
type Config struct {
	// ListenAddr is the TCP address to listen on. Port 0 picks a free port.
	ListenAddr string `json:"listen_addr"`

	// ShutdownTimeout bounds how long Stop waits for in-flight requests.
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`

	// MaxBodyBytes caps request bodies. Zero disables the limit.
	MaxBodyBytes int64 `json:"max_body_bytes"`
}

// DefaultConfig returns sensible defaults for the HTTP service.
func DefaultConfig() Config {
	return Config{
		ListenAddr:      "127.0.0.1:3001",
		ShutdownTimeout: 5 * time.Second,
		MaxBodyBytes:    10 * 1024 * 1024,
	}
}

// ============================================================
// HTTPServer Implementation
// ============================================================

// HTTPServer is the production implementation of the Service interface.
type HTTPServer struct {
	config  Config
	store   database.Store
	log     logrus.FieldLogger
	metrics Metrics

	echo     *echo.Echo
	http     *http.Server
	listener net.Listener

	mu      sync.Mutex
	wg      sync.WaitGroup
	started time.Time
	cancel  context.CancelFunc
}

// New creates a server over store. A nil logger discards output.
func New(config Config, store database.Store, log logrus.FieldLogger) *HTTPServer {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	s := &HTTPServer{
		config:  config,
		store:   store,
		log:     log,
		started: time.Now(),
	}
	s.echo = s.routes()
	return s
}

// Handler returns the HTTP handler, for embedding or tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.echo
}

func (s *HTTPServer) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	if s.config.MaxBodyBytes > 0 {
		e.Use(middleware.BodyLimit(fmt.Sprintf("%dB", s.config.MaxBodyBytes)))
	}
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.record(v.Status)
			entry := s.log.WithFields(logrus.Fields{
				"method":  v.Method,
				"uri":     v.URI,
				"status":  v.Status,
				"latency": v.Latency,
			})
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			if v.Status >= http.StatusInternalServerError {
				entry.Error("request failed")
			} else {
				entry.Debug("request")
			}
			return nil
		},
	}))

	e.GET("/health", s.handleHealth)
	e.GET("/api/metrics", s.handleMetrics)

	api := e.Group("/api")
	api.GET("/projects", s.listProjects)
	api.GET("/projects/:id", s.getProject)
	api.POST("/projects", s.createProject)
	api.PUT("/projects/:id", s.updateProject)
	api.DELETE("/projects/:id", s.deleteProject)
	api.GET("/templates", s.listTemplates)
	api.GET("/templates/:id", s.getTemplate)
	api.POST("/templates", s.createTemplate)

	return e
}

// Start begins listening on the configured address. The server runs until
// ctx is cancelled or Stop is called.
func (s *HTTPServer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	listener, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.config.ListenAddr, err)
	}
	s.listener = listener
	s.http = &http.Server{
		Handler:           s.echo,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.http.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.WithError(err).Error("http server stopped")
		}
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		<-ctx.Done()
		s.shutdown()
	}()

	s.log.WithField("addr", listener.Addr().String()).Info("lowcode server listening")
	return nil
}

// Addr returns the bound address once Start has succeeded.
func (s *HTTPServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop gracefully shuts down the server and waits for its goroutines.
func (s *HTTPServer) Stop() error {
	s.log.Info("shutting down lowcode server")

	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}

	s.wg.Wait()
	s.log.Info("lowcode server stopped")
	return nil
}

func (s *HTTPServer) shutdown() {
	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		s.log.WithError(err).Warn("graceful shutdown incomplete")
	}
}

// Metrics returns a snapshot of the current request metrics.
func (s *HTTPServer) Metrics() Metrics {
	return Metrics{
		Requests:         atomic.LoadInt64(&s.metrics.Requests),
		ClientErrors:     atomic.LoadInt64(&s.metrics.ClientErrors),
		ServerErrors:     atomic.LoadInt64(&s.metrics.ServerErrors),
		ProjectsCreated:  atomic.LoadInt64(&s.metrics.ProjectsCreated),
		ProjectsUpdated:  atomic.LoadInt64(&s.metrics.ProjectsUpdated),
		ProjectsDeleted:  atomic.LoadInt64(&s.metrics.ProjectsDeleted),
		TemplatesCreated: atomic.LoadInt64(&s.metrics.TemplatesCreated),
		Uptime:           int64(time.Since(s.started).Seconds()),
	}
}

func (s *HTTPServer) record(status int) {
	atomic.AddInt64(&s.metrics.Requests, 1)
	switch {
	case status >= http.StatusInternalServerError:
		atomic.AddInt64(&s.metrics.ServerErrors, 1)
	case status >= http.StatusBadRequest:
		atomic.AddInt64(&s.metrics.ClientErrors, 1)
	}
}
