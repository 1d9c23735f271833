package api

import (
	"context"
	"net/http"

	"github.com/okian/bgxboard/internal/domain/analytics"
)

// AnalyticsDependencies defines the interface for visit analytics reads.
type AnalyticsDependencies interface {
	Analytics(ctx context.Context) (analytics.View, error)
}

// AnalyticsHandler handles analytics requests.
type AnalyticsHandler struct {
	deps AnalyticsDependencies
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(deps AnalyticsDependencies) *AnalyticsHandler {
	return &AnalyticsHandler{deps: deps}
}

// HandleGetAnalytics handles GET /api/analytics requests.
func (h *AnalyticsHandler) HandleGetAnalytics(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_analytics"
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	view, err := h.deps.Analytics(r.Context())
	if err != nil {
		status, code, err := classify(op, err)
		writeError(w, status, code, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
