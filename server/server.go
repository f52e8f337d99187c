package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/umputun/feedpost/pkg/domain"
)

//go:generate moq -out mocks/config.go -pkg mocks -skip-ensure -fmt goimports . ConfigProvider
//go:generate moq -out mocks/reporter.go -pkg mocks -skip-ensure -fmt goimports . Reporter
//go:generate moq -out mocks/cursors.go -pkg mocks -skip-ensure -fmt goimports . CursorReader

// Server exposes delivery status over HTTP
type Server struct {
	config   ConfigProvider
	reporter Reporter
	cursors  CursorReader
	version  string
	debug    bool

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle
}

// ConfigProvider provides server configuration
type ConfigProvider interface {
	GetServerConfig() (listen string, timeout time.Duration)
	GetFeeds() []domain.Feed
}

// Reporter provides the latest delivery run outcome
type Reporter interface {
	LastReport() *domain.RunReport
}

// CursorReader reads the stored delivery positions
type CursorReader interface {
	Cursors(ctx context.Context) (map[string]string, error)
}

// New initializes a new server instance
func New(cfg ConfigProvider, reporter Reporter, cursors CursorReader, version string, debug bool) *Server {
	s := &Server{
		config:   cfg,
		reporter: reporter,
		cursors:  cursors,
		version:  version,
		debug:    debug,
		router:   routegroup.New(http.NewServeMux()),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Run starts the HTTP server and handles graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	listen, timeout := s.config.GetServerConfig()
	lgr.Printf("[INFO] starting server on %s", listen)

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:         listen,
		Handler:      s.router,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		lgr.Printf("[INFO] shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			lgr.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("feedpost", "umputun", s.version))
	s.router.Use(rest.Ping)

	if s.debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(1024 * 1024)) // 1MB
}

// setupRoutes configures application routes
func (s *Server) setupRoutes() {
	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /status", s.statusHandler)
		r.HandleFunc("GET /feeds", s.feedsHandler)
	})
}

// statusHandler returns server status and the latest run report
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":  "ok",
		"version": s.version,
		"time":    time.Now().UTC(),
	}
	if report := s.reporter.LastReport(); report != nil {
		status["last_run"] = report
	}
	RenderJSON(w, r, http.StatusOK, status)
}

// feedsHandler returns configured feeds with their delivery positions
func (s *Server) feedsHandler(w http.ResponseWriter, r *http.Request) {
	cursors, err := s.cursors.Cursors(r.Context())
	if err != nil {
		RenderError(w, r, fmt.Errorf("read cursors: %w", err), http.StatusInternalServerError)
		return
	}

	type feedInfo struct {
		Name   string `json:"name"`
		URL    string `json:"url"`
		Cursor string `json:"cursor,omitempty"`
	}

	feeds := s.config.GetFeeds()
	resp := make([]feedInfo, 0, len(feeds))
	for _, fd := range feeds {
		resp = append(resp, feedInfo{Name: fd.Name, URL: fd.URL, Cursor: cursors[fd.Name]})
	}
	RenderJSON(w, r, http.StatusOK, resp)
}

// RenderJSON sends JSON response
func RenderJSON(w http.ResponseWriter, _ *http.Request, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			lgr.Printf("[ERROR] can't encode response to JSON: %v", err)
		}
	}
}

// RenderError sends error response as JSON
func RenderError(w http.ResponseWriter, r *http.Request, err error, code int) {
	errMsg := "unknown error"
	if err != nil {
		errMsg = err.Error()
	}
	RenderJSON(w, r, code, map[string]string{"error": errMsg})
}
