// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	json "github.com/goccy/go-json"

	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/internal/domain/search"
	"github.com/okian/scout/internal/domain/types"
	"github.com/okian/scout/pkg/logger"
)

// Searcher is the read side of the engine.
type Searcher interface {
	Similar(ctx context.Context, name string, q search.Query) (search.Result, error)
	SimilarByID(ctx context.Context, id string, q search.Query) (search.Result, error)
	PlayerByID(ctx context.Context, id string) (model.Player, error)
	Players(ctx context.Context, offset, limit int) ([]model.Player, int, error)
}

// Dependencies required by HTTP handlers.
type Dependencies interface {
	Searcher

	// RequestReload queues a dataset reload. duplicate is true when an
	// identical request is already pending or done.
	RequestReload(ctx context.Context, reason string, force bool) (id string, duplicate bool, err error)

	Ready() types.Ready
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	playersHandler *PlayersHandler
	similarHandler *SimilarHandler
	reloadHandler  *ReloadHandler

	corsOrigins []string
	rateLimit   int
	rateWindow  time.Duration
	log         logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		corsOrigins: []string{"*"},
		rateWindow:  time.Minute,
		log:         logger.Nop(),
	}
	cfg := handlerConfig{defaultCount: 20, maxPageLimit: 100}
	for _, opt := range opts {
		opt(s, &cfg)
	}
	s.healthHandler = NewHealthHandler(deps)
	s.statsHandler = NewStatsHandler(statsProvider)
	s.playersHandler = NewPlayersHandler(deps, cfg.maxPageLimit)
	s.similarHandler = NewSimilarHandler(deps, cfg.defaultCount, cfg.maxPageLimit)
	s.reloadHandler = NewReloadHandler(deps, s.log)
	return s
}

// Register attaches all HTTP routes and middleware to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/readyz", MetricsMiddleware(s.healthHandler.HandleReady, "readyz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	r.Group(func(r chi.Router) {
		if s.rateLimit > 0 {
			r.Use(httprate.Limit(s.rateLimit, s.rateWindow,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
					writeError(w, http.StatusTooManyRequests, "rate_limited", nil)
				}),
			))
		}
		r.Get("/players", MetricsMiddleware(s.playersHandler.HandleList, "players"))
		r.Get("/players/{id}", MetricsMiddleware(s.playersHandler.HandleGet, "player"))
		r.Get("/similar", MetricsMiddleware(s.similarHandler.HandleSimilar, "similar"))
		r.Post("/reload", MetricsMiddleware(s.reloadHandler.HandleReload, "reload"))
	})
}

// Handler returns a router with every route registered.
func (s *Server) Handler(ctx context.Context) http.Handler {
	r := chi.NewRouter()
	s.Register(ctx, r)
	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps err to a status code and writes it.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	writeError(w, status, code, err)
}
