package api

import (
	"net/http"
	"time"

	"github.com/dukerupert/vanir/internal/cms"
	"github.com/dukerupert/vanir/internal/router"
)

// ContentHandler serves published CMS content blocks. Reads go through the
// caching provider, so repeated storefront fetches do not hit the database.
type ContentHandler struct {
	content cms.Provider
}

// NewContentHandler creates a new content handler.
func NewContentHandler(content cms.Provider) *ContentHandler {
	return &ContentHandler{content: content}
}

// RegisterRoutes registers content routes on the given router group.
func (h *ContentHandler) RegisterRoutes(r *router.Router) {
	r.Get("/api/v1/content/{slug}", h.Get)
}

type contentResponse struct {
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Get handles GET /api/v1/content/{slug}.
func (h *ContentHandler) Get(w http.ResponseWriter, r *http.Request) {
	store, err := storeFromRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	content, err := h.content.GetContent(r.Context(), store.ID, r.PathValue("slug"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, contentResponse{
		Slug:      content.Slug,
		Title:     content.Title,
		Body:      content.Body,
		UpdatedAt: content.UpdatedAt.Time,
	})
}
