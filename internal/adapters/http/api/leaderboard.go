package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/bgxboard/internal/domain/leaderboard"
)

// LeaderboardDependencies defines the interface for leaderboard reads.
type LeaderboardDependencies interface {
	Leaderboard(ctx context.Context, category string) (leaderboard.View, error)
}

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps LeaderboardDependencies
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps}
}

// HandleGetLeaderboard handles GET /api/leaderboard?category=<key> requests.
// An empty category selects the default one.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	category := strings.TrimSpace(r.URL.Query().Get("category"))
	view, err := h.deps.Leaderboard(r.Context(), category)
	if err != nil {
		status, code, err := classify(op, err)
		writeError(w, status, code, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
