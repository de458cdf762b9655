// Package server exposes graph handles over HTTP.
//
// Graphs are created from JSON edge lists, CSR arrays or RMAT descriptors
// and kept in memory under a UUID until deleted. Every route replies with
// JSON; failures carry {"code", "message"} with the status derived from
// the error code.
//
//	POST   /v1/graphs                      create (edge list, CSR or RMAT)
//	GET    /v1/graphs                      list
//	GET    /v1/graphs/{id}                 views present, V and E
//	DELETE /v1/graphs/{id}                 release
//	POST   /v1/graphs/{id}/views/{view}    derive a view
//	DELETE /v1/graphs/{id}/views/{view}    drop a view
//	POST   /v1/graphs/{id}/pagerank        run PageRank
//	POST   /v1/graphs/{id}/bfs             run BFS
//	GET    /healthz
//	GET    /metrics                        Prometheus exposition
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// DefaultMaxScale caps RMAT graphs generated through the API.
	DefaultMaxScale = 22

	// DefaultMaxVertices and DefaultMaxEdges cap the size of any graph
	// created through the API.
	DefaultMaxVertices = 1 << 24
	DefaultMaxEdges    = 1 << 26

	// DefaultMaxBodyBytes caps request bodies.
	DefaultMaxBodyBytes = 256 << 20

	shutdownTimeout = 10 * time.Second
)

// Config configures a Server. Zero values select defaults.
type Config struct {
	Logger       *log.Logger
	Gatherer     prometheus.Gatherer
	MaxScale     int
	MaxVertices  int
	MaxEdges     int64
	MaxBodyBytes int64
}

// Server serves the graph API. It implements http.Handler.
type Server struct {
	registry *Registry
	router   chi.Router
	logger   *log.Logger
	maxScale    int
	maxVertices int
	maxEdges    int64
	maxBody     int64
}

// New creates a server with an empty registry.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}
	if cfg.MaxScale <= 0 {
		cfg.MaxScale = DefaultMaxScale
	}
	if cfg.MaxVertices <= 0 {
		cfg.MaxVertices = DefaultMaxVertices
	}
	if cfg.MaxEdges <= 0 {
		cfg.MaxEdges = DefaultMaxEdges
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	s := &Server{
		registry:    NewRegistry(),
		logger:      cfg.Logger,
		maxScale:    cfg.MaxScale,
		maxVertices: cfg.MaxVertices,
		maxEdges:    cfg.MaxEdges,
		maxBody:     cfg.MaxBodyBytes,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.withObservability)

	r.Get("/healthz", handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1/graphs", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Get("/", s.handleList)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Delete("/", s.handleDelete)
			r.Post("/views/{view}", s.handleDerive)
			r.Delete("/views/{view}", s.handleDrop)
			r.Post("/pagerank", s.handlePageRank)
			r.Post("/bfs", s.handleBFS)
		})
	})

	s.router = r
	return s
}

// Registry returns the handle registry.
func (s *Server) Registry() *Registry { return s.registry }

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully and releases every registered graph.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("server shutting down")
	err := srv.Shutdown(shutdownCtx)
	_ = s.registry.Close()
	return err
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
