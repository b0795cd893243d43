package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/folios/internal/docservice"
	"github.com/starford/folios/internal/index"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// idx may be nil when the search index is disabled.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *docservice.Service, idx index.DocumentIndex, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, idx)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Documents (read-only).
	r.Get("/documents", h.ListDocuments)
	r.Get("/documents/{id}", h.GetDocument)
	r.Get("/documents/{id}/content", h.GetContent)
	r.Get("/documents/{id}/versions", h.ListVersions)
	r.Get("/documents/{id}/chapters/{title}", h.GetChapter)
	r.Get("/documents/{id}/diff", h.DiffVersions)

	// Search.
	r.Get("/search", h.Search)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
