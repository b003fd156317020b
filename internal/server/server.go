// Package server serves the latest team tree over HTTP.
//
// A background [poller.Poller] keeps one snapshot of the tree fresh; every
// request lays that snapshot out and renders it through the shared
// [pipeline.Runner], so repeated requests for the same tree and options are
// answered from the cache. Routes:
//
//	GET /tree.svg      card view
//	GET /tree.json     cards, members and connectors
//	GET /tree.txt      box-drawing text
//	GET /tree.dot      Graphviz source
//	GET /tree.dot.svg  node-link view
//	GET /healthz       poll status
//	GET /metrics       Prometheus metrics
//
// Tree routes accept ?style= and ?depth= to override the configured defaults.
// Until the first fetch completes they answer 503.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/teamtree/pkg/errors"
	"github.com/matzehuels/teamtree/pkg/httputil"
	"github.com/matzehuels/teamtree/pkg/layout"
	"github.com/matzehuels/teamtree/pkg/pipeline"
	"github.com/matzehuels/teamtree/pkg/poller"
)

// Header names set on tree responses.
const (
	HeaderFetchedAt = "X-Teamtree-Fetched-At"
	HeaderFetchErr  = "X-Teamtree-Fetch-Error"
	HeaderCache     = "X-Teamtree-Cache"
)

// Config holds server configuration.
type Config struct {
	Addr     string
	Runner   *pipeline.Runner
	Fetch    poller.FetchFunc
	Options  pipeline.Options // defaults for every request
	Interval time.Duration
	Logger   *log.Logger

	// Registry receives the server's collectors. A fresh registry is used
	// when nil.
	Registry *prometheus.Registry
}

// Server serves tree renders from a polled snapshot.
type Server struct {
	router  *chi.Mux
	server  *http.Server
	runner  *pipeline.Runner
	poller  *poller.Poller
	base    pipeline.Options
	logger  *log.Logger
	metrics *Metrics

	mu     sync.RWMutex
	latest poller.Snapshot
}

// New creates a server. It does not start polling or listening; see [Server.Run].
func New(cfg Config) (*Server, error) {
	if cfg.Runner == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "server needs a pipeline runner")
	}
	if cfg.Fetch == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "server needs a fetch function")
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}

	base := cfg.Options
	if err := base.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	s := &Server{
		router:  chi.NewRouter(),
		runner:  cfg.Runner,
		base:    base,
		logger:  cfg.Logger.WithPrefix("server"),
		metrics: NewMetrics(cfg.Registry),
		latest:  poller.Snapshot{Loading: true},
	}
	s.poller = poller.New(cfg.Fetch, s.onSnapshot,
		poller.WithInterval(cfg.Interval),
		poller.WithLayout(base.LayoutOptions()),
		poller.WithLogger(cfg.Logger),
	)

	s.setupMiddleware()
	s.setupRoutes(cfg.Registry)

	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// Metrics returns the server's collectors, e.g. to install them as
// observability hooks.
func (s *Server) Metrics() *Metrics { return s.metrics }

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Run starts polling and serves until ctx is done, then shuts down
// gracefully and stops the poller.
func (s *Server) Run(ctx context.Context) error {
	pollCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err := s.poller.Run(pollCtx); err != nil && pollCtx.Err() == nil {
			s.logger.Error("poller stopped", "error", err)
		}
	}()
	defer s.poller.Stop()

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.server.Addr)
		errc <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}

// onSnapshot runs with the poller lock held.
func (s *Server) onSnapshot(snap poller.Snapshot) {
	s.mu.Lock()
	s.latest = snap
	s.mu.Unlock()
	if !snap.Loading {
		s.logger.Debug("snapshot", "seq", snap.Seq, "members", snap.Root.Count(), "error", snap.Err)
	}
}

func (s *Server) snapshot() poller.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// =============================================================================
// Routing
// =============================================================================

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.instrument)
}

func (s *Server) setupRoutes(reg *prometheus.Registry) {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	s.router.Get("/tree.svg", s.handleTree(pipeline.FormatSVG))
	s.router.Get("/tree.json", s.handleTree(pipeline.FormatJSON))
	s.router.Get("/tree.txt", s.handleTree(pipeline.FormatText))
	s.router.Get("/tree.dot", s.handleTree(pipeline.FormatDOT))
	s.router.Get("/tree.dot.svg", s.handleTree(pipeline.FormatNodelink))
}

// instrument logs every request and records it in the metrics.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		s.metrics.observeRequest(route, status, d)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", d,
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// =============================================================================
// Handlers
// =============================================================================

type healthResponse struct {
	Status    string    `json:"status"`
	Seq       int       `json:"seq"`
	Members   int       `json:"members"`
	Populated int       `json:"populated"`
	FetchedAt time.Time `json:"fetched_at,omitzero"`
	Error     string    `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot()
	resp := healthResponse{
		Status:    "ok",
		Seq:       snap.Seq,
		Members:   snap.Root.Count(),
		Populated: snap.Layout.Populated(),
		FetchedAt: snap.FetchedAt,
	}
	switch {
	case snap.Loading:
		resp.Status = "loading"
	case snap.Err != nil:
		resp.Status = "degraded"
		resp.Error = errors.UserMessage(snap.Err)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTree(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := s.snapshot()
		if snap.Loading {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusServiceUnavailable, "tree not fetched yet")
			return
		}

		opts, err := s.requestOptions(r, format)
		if err != nil {
			writeError(w, httputil.StatusFor(err), errors.UserMessage(err))
			return
		}

		result, err := s.runner.FromTree(r.Context(), pipeline.Fetched{
			Root:      snap.Root,
			Stats:     snap.Stats,
			FetchedAt: snap.FetchedAt,
		}, opts)
		if err != nil {
			s.logger.Error("render failed", "format", format, "error", err)
			writeError(w, httputil.StatusFor(err), errors.UserMessage(err))
			return
		}

		h := w.Header()
		h.Set("Content-Type", pipeline.ContentTypes[format])
		h.Set(HeaderFetchedAt, snap.FetchedAt.UTC().Format(time.RFC3339))
		if snap.Err != nil {
			h.Set(HeaderFetchErr, errors.UserMessage(snap.Err))
		}
		if result.CacheInfo.RenderHit {
			h.Set(HeaderCache, "hit")
		} else {
			h.Set(HeaderCache, "miss")
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(result.Artifacts[format])
	}
}

// requestOptions applies ?style= and ?depth= over the server defaults.
func (s *Server) requestOptions(r *http.Request, format string) (pipeline.Options, error) {
	opts := pipeline.Options{
		Kind:       s.base.Kind,
		Depth:      s.base.Depth,
		CardWidth:  s.base.CardWidth,
		CardHeight: s.base.CardHeight,
		HGap:       s.base.HGap,
		VGap:       s.base.VGap,
		Style:      s.base.Style,
		Detailed:   s.base.Detailed,
		Formats:    []string{format},
		Logger:     s.base.Logger,
	}
	q := r.URL.Query()
	if v := q.Get("style"); v != "" {
		opts.Style = v
	}
	if v := q.Get("depth"); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidDepth, "depth must be a number, got %q", v)
		}
		// Zero would otherwise be replaced by the default depth.
		if d < 1 {
			return opts, errors.New(errors.ErrCodeInvalidDepth, "depth must be between 1 and %d, got %d", layout.MaxDepth, d)
		}
		opts.Depth = d
	}
	if q.Get("interactive") == "1" || q.Get("interactive") == "true" {
		opts.Interactive = true
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return opts, err
	}
	return opts, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
