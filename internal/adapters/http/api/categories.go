package api

import (
	"net/http"
	"strings"

	"github.com/okian/bgxboard/internal/domain/types"
)

// CategoriesDependencies exposes the category enumeration.
type CategoriesDependencies interface {
	Categories() types.Categories
	DefaultCategory() string
}

// CategoriesHandler handles category enumeration requests.
type CategoriesHandler struct {
	deps CategoriesDependencies
}

// NewCategoriesHandler creates a new categories handler.
func NewCategoriesHandler(deps CategoriesDependencies) *CategoriesHandler {
	return &CategoriesHandler{deps: deps}
}

type categoryResponse struct {
	Key    string `json:"key"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// HandleGetCategories handles GET /api/categories?category=<key> requests.
// The requested category, or the default one, is marked active.
func (h *CategoriesHandler) HandleGetCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	active := strings.TrimSpace(r.URL.Query().Get("category"))
	if active == "" {
		active = h.deps.DefaultCategory()
	}

	cats := h.deps.Categories()
	out := make([]categoryResponse, len(cats))
	for i, c := range cats {
		out[i] = categoryResponse{Key: c.Key, Name: c.Name, Active: c.Key == active}
	}
	writeJSON(w, http.StatusOK, out)
}
