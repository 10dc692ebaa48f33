package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Router assembles the HTTP API.
type Router struct {
	accountHandler *AccountHandler
	badgeHandler   *BadgeHandler
	db             Pinger
	metrics        func(http.Handler) http.Handler
	requestTimeout time.Duration
	iconDir        string
	logger         zerolog.Logger
}

// RouterConfig contains configuration for the router.
type RouterConfig struct {
	AccountHandler *AccountHandler
	BadgeHandler   *BadgeHandler
	DB             Pinger
	// Metrics is an optional instrumentation middleware.
	Metrics func(http.Handler) http.Handler
	// RequestTimeout bounds each request's context.
	RequestTimeout time.Duration
	// IconDir, when non-empty, is served under /icons/ for the
	// filesystem storage backend.
	IconDir string
	Logger  zerolog.Logger
}

// NewRouter creates a new Router.
func NewRouter(config RouterConfig) *Router {
	return &Router{
		accountHandler: config.AccountHandler,
		badgeHandler:   config.BadgeHandler,
		db:             config.DB,
		metrics:        config.Metrics,
		requestTimeout: config.RequestTimeout,
		iconDir:        config.IconDir,
		logger:         config.Logger.With().Str("component", "router").Logger(),
	}
}

// Handler returns the main HTTP handler.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(rt.logger))
	r.Use(middleware.Recoverer)
	if rt.metrics != nil {
		r.Use(rt.metrics)
	}
	if rt.requestTimeout > 0 {
		r.Use(requestTimeout(rt.requestTimeout))
	}

	r.Get("/healthz", rt.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		rt.accountHandler.RegisterRoutes(r)
		rt.badgeHandler.RegisterRoutes(r)
	})

	if rt.iconDir != "" {
		r.Handle("/icons/*", http.StripPrefix("/icons/", http.FileServer(http.Dir(rt.iconDir))))
	}

	return r
}

// handleHealth reports liveness and store reachability.
func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	if rt.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := rt.db.Ping(ctx); err != nil {
			rt.logger.Error().Err(err).Msg("health check database ping failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
