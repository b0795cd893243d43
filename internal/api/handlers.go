package api

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/folios/internal/docservice"
	"github.com/starford/folios/internal/index"
)

// Handler holds API route handlers.
type Handler struct {
	svc *docservice.Service
	idx index.DocumentIndex
}

// NewHandler creates a new Handler. idx may be nil when the search index
// is disabled.
func NewHandler(svc *docservice.Service, idx index.DocumentIndex) *Handler {
	return &Handler{svc: svc, idx: idx}
}

// docID extracts and parses the {id} URL parameter.
func docID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 0 {
		return 0, false
	}
	return id, true
}

// versionParam parses the optional ?version= query parameter.
// Absent means latest (0).
func versionParam(r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("version")
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// ListDocuments handles GET /api/documents.
//
//	@Summary		List latest document versions with optional filters
//	@Tags			documents
//	@Produce		json
//	@Param			status	query		string	false	"Filter by exact status"
//	@Param			type	query		string	false	"Filter by exact document type"
//	@Param			author	query		string	false	"Filter by author substring (case-insensitive)"
//	@Success		200		{object}	DocumentListResponse
//	@Security		BearerAuth
//	@Router			/documents [get]
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items := h.svc.List(docservice.Filters{
		Status: q.Get("status"),
		Type:   q.Get("type"),
		Author: q.Get("author"),
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"documents": items,
		"total":     len(items),
	})
}

// GetDocument handles GET /api/documents/{id}.
//
//	@Summary		Get document metadata
//	@Tags			documents
//	@Produce		json
//	@Param			id		path		int	true	"Document ID"
//	@Param			version	query		int	false	"Version (omit for latest)"
//	@Success		200		{object}	models.Metadata
//	@Failure		404		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/{id} [get]
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := docID(r)
	if !ok {
		badRequest(w, "invalid document id")
		return
	}
	version, ok := versionParam(r)
	if !ok {
		badRequest(w, "invalid version")
		return
	}
	meta, err := h.svc.Metadata(id, version)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

// GetContent handles GET /api/documents/{id}/content.
//
//	@Summary		Get raw document content
//	@Tags			documents
//	@Produce		json
//	@Param			id		path		int	true	"Document ID"
//	@Param			version	query		int	false	"Version (omit for latest)"
//	@Success		200		{object}	ContentResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/{id}/content [get]
func (h *Handler) GetContent(w http.ResponseWriter, r *http.Request) {
	id, ok := docID(r)
	if !ok {
		badRequest(w, "invalid document id")
		return
	}
	version, ok := versionParam(r)
	if !ok {
		badRequest(w, "invalid version")
		return
	}
	content, err := h.svc.Content(id, version)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":      id,
		"content": content,
	})
}

// ListVersions handles GET /api/documents/{id}/versions.
//
//	@Summary		List all versions of a document
//	@Tags			documents
//	@Produce		json
//	@Param			id	path		int	true	"Document ID"
//	@Success		200	{object}	VersionListResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/{id}/versions [get]
func (h *Handler) ListVersions(w http.ResponseWriter, r *http.Request) {
	id, ok := docID(r)
	if !ok {
		badRequest(w, "invalid document id")
		return
	}
	versions, err := h.svc.Versions(id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":       id,
		"versions": versions,
	})
}

// GetChapter handles GET /api/documents/{id}/chapters/{title}.
//
//	@Summary		Get a single chapter's content
//	@Tags			documents
//	@Produce		json
//	@Param			id		path		int		true	"Document ID"
//	@Param			title	path		string	true	"Chapter title (URL-encoded)"
//	@Param			version	query		int		false	"Version (omit for latest)"
//	@Success		200		{object}	models.ChapterContent
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/{id}/chapters/{title} [get]
func (h *Handler) GetChapter(w http.ResponseWriter, r *http.Request) {
	id, ok := docID(r)
	if !ok {
		badRequest(w, "invalid document id")
		return
	}
	version, ok := versionParam(r)
	if !ok {
		badRequest(w, "invalid version")
		return
	}
	title := chi.URLParam(r, "title")
	if decoded, err := url.PathUnescape(title); err == nil {
		title = decoded
	}
	if title == "" {
		badRequest(w, "chapter title is required")
		return
	}
	ch, err := h.svc.Chapter(id, title, version)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ch)
}

// DiffVersions handles GET /api/documents/{id}/diff.
//
//	@Summary		Diff two versions of a document
//	@Tags			documents
//	@Produce		json
//	@Param			id		path		int		true	"Document ID"
//	@Param			from	query		int		true	"Older version"
//	@Param			to		query		int		false	"Newer version (omit for latest)"
//	@Param			whole	query		bool	false	"Return a single whole-document diff"
//	@Success		200		{object}	DiffResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/{id}/diff [get]
func (h *Handler) DiffVersions(w http.ResponseWriter, r *http.Request) {
	id, ok := docID(r)
	if !ok {
		badRequest(w, "invalid document id")
		return
	}
	q := r.URL.Query()
	from, err := strconv.Atoi(q.Get("from"))
	if err != nil || from < 0 {
		badRequest(w, "query parameter 'from' is required")
		return
	}
	to := 0
	if raw := q.Get("to"); raw != "" {
		to, err = strconv.Atoi(raw)
		if err != nil || to < 0 {
			badRequest(w, "invalid 'to' version")
			return
		}
	}

	if q.Get("whole") == "1" || q.Get("whole") == "true" {
		diff, err := h.svc.DiffWhole(id, from, to)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"id":   id,
			"diff": diff,
		})
		return
	}

	changes, err := h.svc.Diff(id, from, to)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":      id,
		"changes": changes,
	})
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across indexed documents
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	if h.idx == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"error": map[string]string{"code": "READ_ERROR", "message": "search index disabled"},
		})
		return
	}
	q := r.URL.Query().Get("q")
	if q == "" {
		badRequest(w, "query parameter 'q' is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.idx.Search(q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error": map[string]string{"code": "READ_ERROR", "message": "internal error"},
		})
		return
	}
	if results == nil {
		results = []index.SearchResult{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
	})
}
