// Package server serves a converted label graph over HTTP for the 3D viewer
// and accepts new documents for conversion.
//
// Routes:
//
//	GET  /healthz          liveness and build version
//	GET  /graph            graph JSON; ?types=label,artist filters like the viewer
//	GET  /graph/malformed  malformed-entry log as a JSON array
//	GET  /graph/stats      node counts per type
//	GET  /graph.dot        DOT rendering; ?types= and ?detailed=true
//	GET  /graph.svg        SVG rendering; same parameters
//	POST /convert          convert the request body; ?replace=true serves the result
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/octavate/labelgraph/pkg/labelgraph"
	"github.com/octavate/labelgraph/pkg/pipeline"
)

// DefaultMaxBodyBytes limits POST /convert request bodies.
const DefaultMaxBodyBytes = 64 << 20

// Options configures a Server.
type Options struct {
	// RenderTypes are the node types drawn by /graph.dot and /graph.svg when
	// the request does not name any.
	RenderTypes []labelgraph.NodeType

	// Detailed is the default for the detailed render parameter.
	Detailed bool

	// MaxBodyBytes limits POST /convert bodies. Zero means DefaultMaxBodyBytes.
	MaxBodyBytes int64
}

// Server holds the graph currently being served.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	opts   Options

	mu      sync.RWMutex
	current *pipeline.Result
}

// New creates a server for initial. initial may be nil, in which case the
// graph routes return 404 until a conversion is posted with replace=true.
func New(runner *pipeline.Runner, logger *log.Logger, initial *pipeline.Result, opts Options) *Server {
	if len(opts.RenderTypes) == 0 {
		opts.RenderTypes = labelgraph.DefaultViewTypes
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		runner:  runner,
		logger:  logger,
		opts:    opts,
		current: initial,
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/graph", func(r chi.Router) {
		r.Get("/", s.handleGraph)
		r.Get("/malformed", s.handleMalformed)
		r.Get("/stats", s.handleStats)
	})
	r.Get("/graph.dot", s.handleRender(pipeline.FormatDOT))
	r.Get("/graph.svg", s.handleRender(pipeline.FormatSVG))
	r.Post("/convert", s.handleConvert)

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Current returns the result being served.
func (s *Server) Current() *pipeline.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Server) setCurrent(res *pipeline.Result) {
	s.mu.Lock()
	s.current = res
	s.mu.Unlock()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration", time.Since(start))
	})
}
