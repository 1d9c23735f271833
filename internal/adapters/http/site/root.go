// Package site serves the embedded dashboard pages and records a page view
// for each one served.
package site

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"strings"

	service "github.com/okian/bgxboard/internal/app"
	"github.com/okian/bgxboard/internal/domain/device"
	"github.com/okian/bgxboard/internal/domain/model"
	"github.com/okian/bgxboard/pkg/logger"
)

// Error constants
var (
	ErrServe = errors.New("site serve failed")
)

// Tracker records page views.
type Tracker interface {
	Track(ctx context.Context, req service.TrackRequest) (service.TrackOutcome, error)
	DefaultCategory() string
}

// Handler serves the leaderboard and statistics pages.
type Handler struct {
	tracker Tracker
	files   http.Handler
	logger  logger.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the handler logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewHandler creates a site handler recording views through tracker.
func NewHandler(tracker Tracker, opts ...Option) *Handler {
	h := &Handler{
		tracker: tracker,
		files:   http.FileServer(FS()),
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register attaches the site routes to mux.
//
//	GET /        -> leaderboard page, records a home view for ?category
//	GET /stats   -> statistics page, records a stats view
//	GET /assets/ -> static assets
func (h *Handler) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("/", h.HandleRoot)
	mux.HandleFunc("/stats", h.HandleStats)
	mux.Handle("/assets/", h.files)
}

// HandleRoot serves the leaderboard page. Other unmatched paths are 404.
func (h *Handler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if !allowed(w, r) {
		return
	}
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	if category == "" {
		category = h.tracker.DefaultCategory()
	}
	if !h.track(r, model.PageHome, category) {
		http.Error(w, "unknown category", http.StatusNotFound)
		return
	}
	h.page(w, r, "index.html")
}

// HandleStats serves the visit statistics page.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if !allowed(w, r) {
		return
	}
	h.track(r, model.PageStats, "")
	h.page(w, r, "stats.html")
}

// track records a view and reports false only for an unknown category.
// Other failures are logged; the page is still served.
func (h *Handler) track(r *http.Request, page model.Page, category string) bool {
	ctx := r.Context()
	if r.Method == http.MethodHead {
		return true
	}
	outcome, err := h.tracker.Track(ctx, service.TrackRequest{
		Page:       string(page),
		Category:   category,
		DeviceType: device.Classify(r.UserAgent()),
	})
	switch {
	case errors.Is(err, service.ErrUnknownCategory):
		return false
	case err != nil:
		h.logger.Warn(ctx, "page view not recorded", logger.String("page", string(page)), logger.Error(err))
	case outcome == service.TrackDropped:
		h.logger.Debug(ctx, "page view dropped", logger.String("page", string(page)))
	}
	return true
}

func (h *Handler) page(w http.ResponseWriter, r *http.Request, name string) {
	body, err := fs.ReadFile(staticFS, "static/"+name)
	if err != nil {
		h.logger.Error(r.Context(), "embedded page missing", logger.String("page", name), logger.Error(err))
		http.Error(w, ErrServe.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(body)
}

func allowed(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set("Allow", "GET, HEAD")
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	return false
}
