// Package httpapi serves the query pipeline over HTTP.
//
// Routes:
//
//	GET /healthz                               liveness
//	GET /v1/context?question=...&top_k=N       retrieve and assemble context
//	GET /v1/index                              build info of the loaded index
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/docrag/internal/core/ports/driving"
	"github.com/custodia-labs/docrag/internal/logger"
)

// ErrMissingQueryService is returned when the query service is not provided.
var ErrMissingQueryService = errors.New("httpapi: query service is required")

// Config holds server configuration.
type Config struct {
	// Addr is the listen address, e.g. "127.0.0.1:8080".
	Addr string

	// RequestsPerMinute caps /v1 requests across all clients. Zero disables the limit.
	RequestsPerMinute int

	// AllowedOrigins lists CORS origins. Empty allows localhost only.
	AllowedOrigins []string

	// RequestTimeout bounds each request (default 60s).
	RequestTimeout time.Duration
}

// Server is the HTTP query API.
type Server struct {
	cfg     Config
	query   driving.QueryService
	limiter *rate.Limiter
	log     *logger.Logger
	router  chi.Router
}

// New creates a server. A nil log discards output.
func New(cfg Config, query driving.QueryService, log *logger.Logger) (*Server, error) {
	if query == nil {
		return nil, ErrMissingQueryService
	}
	if cfg.RequestsPerMinute < 0 {
		return nil, fmt.Errorf("httpapi: requests per minute must not be negative, got %d", cfg.RequestsPerMinute)
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	if log == nil {
		log = logger.Nop()
	}

	limit, burst := rate.Inf, 1
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute))
		burst = cfg.RequestsPerMinute
	}

	s := &Server{
		cfg:     cfg,
		query:   query,
		limiter: rate.NewLimiter(limit, burst),
		log:     log,
	}
	s.router = s.buildRouter()
	return s, nil
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.rateLimit)
		r.Get("/context", s.handleContext)
		r.Get("/index", s.handleIndex)
	})

	return r
}

// Handler returns the router.
func (s *Server) Handler() http.Handler { return s.router }

// Run listens on cfg.Addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	s.log.Info("query API listening on %s", s.cfg.Addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// rateLimit rejects requests once the token bucket is empty.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			retry := time.Second
			if s.cfg.RequestsPerMinute > 0 {
				retry = time.Minute / time.Duration(s.cfg.RequestsPerMinute)
			}
			w.Header().Set("Retry-After", strconv.Itoa(max(1, int(retry.Seconds()))))
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug("%s %s %d %s [%s]", r.Method, r.URL.Path, ww.Status(), time.Since(start).Round(time.Millisecond),
			middleware.GetReqID(r.Context()))
	})
}
