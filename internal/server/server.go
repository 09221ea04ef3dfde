// Package server exposes the layout codec over HTTP.
//
// Routes:
//
//	GET  /healthz          liveness and build information
//	POST /v1/deserialize   rows → normalized model (JSON)
//	POST /v1/serialize     normalized model (JSON) → rows
//	POST /v1/normalize     rows → canonical rows
//
// Row bodies are JSON by default. The input format is taken from the
// "format" query parameter or the Content-Type header (application/yaml,
// application/cbor). The output format of row responses is taken from
// "output" and defaults to the input format; "indent" and "compact" tune
// JSON output the same way the CLI flags do.
//
// Results are cached by input hash when a [cache.Cache] is configured, so a
// fleet sharing a Redis instance normalizes each distinct layout once.
//
// [cache.Cache]: github.com/matzehuels/kle/pkg/cache.Cache
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/kle/pkg/cache"
)

const (
	// DefaultAddr is the listen address when none is configured.
	DefaultAddr = "127.0.0.1:8080"

	// DefaultMaxBodyBytes bounds request bodies. The largest public layouts
	// are a few hundred kilobytes.
	DefaultMaxBodyBytes = 4 << 20

	shutdownTimeout = 10 * time.Second
)

// Config configures a [Server].
type Config struct {
	Addr         string
	Cache        cache.Cache   // nil disables result caching
	CacheTTL     time.Duration // zero keeps entries until evicted
	KeyPrefix    string        // namespaces cache keys in a shared Redis
	Logger       *log.Logger   // nil uses log.Default()
	MaxBodyBytes int64         // zero uses DefaultMaxBodyBytes
}

// Server serves the codec API.
type Server struct {
	cfg    Config
	logger *log.Logger
	keyer  cache.Keyer
	router chi.Router
}

// New creates a server with cfg, filling unset fields with defaults.
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Cache == nil {
		cfg.Cache = cache.NewNullCache()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	keyer := cache.NewDefaultKeyer()
	if cfg.KeyPrefix != "" {
		keyer = cache.NewScopedKeyer(keyer, cfg.KeyPrefix)
	}

	s := &Server{
		cfg:    cfg,
		logger: cfg.Logger,
		keyer:  keyer,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/deserialize", s.handleDeserialize)
		r.Post("/serialize", s.handleSerialize)
		r.Post("/normalize", s.handleNormalize)
	})
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.cfg.Addr
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
