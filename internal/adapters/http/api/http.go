// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/okian/bgxboard/internal/app"
	"github.com/okian/bgxboard/internal/domain/analytics"
	"github.com/okian/bgxboard/internal/domain/leaderboard"
	"github.com/okian/bgxboard/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Leaderboard(ctx context.Context, category string) (leaderboard.View, error)
	Analytics(ctx context.Context) (analytics.View, error)
	Track(ctx context.Context, req service.TrackRequest) (service.TrackOutcome, error)
	Categories() types.Categories
	DefaultCategory() string
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	visitsHandler      *VisitsHandler
	leaderboardHandler *LeaderboardHandler
	analyticsHandler   *AnalyticsHandler
	categoriesHandler  *CategoriesHandler
	limiter            *RateLimiter
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	o := newOptions(opts...)
	return &Server{
		healthHandler:      NewHealthHandler(o.serviceName, o.version),
		statsHandler:       NewStatsHandler(statsProvider),
		visitsHandler:      NewVisitsHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps),
		analyticsHandler:   NewAnalyticsHandler(deps),
		categoriesHandler:  NewCategoriesHandler(deps),
		limiter:            NewRateLimiter(o.ratePerSec, o.burst),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("/health", MetricsMiddleware(s.healthHandler.HandleHealth, "health"))
	mux.Handle("/metrics", MetricsHandler())
	mux.HandleFunc("/api/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/api/analytics", MetricsMiddleware(s.analyticsHandler.HandleGetAnalytics, "analytics"))
	mux.HandleFunc("/api/categories", MetricsMiddleware(s.categoriesHandler.HandleGetCategories, "categories"))
	mux.HandleFunc("/api/visits", MetricsMiddleware(s.limiter.Middleware(s.visitsHandler.HandlePostVisit), "visits"))
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

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
}
