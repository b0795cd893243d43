package api

import (
	"github.com/starford/folios/internal/index"
	"github.com/starford/folios/internal/models"
)

// DocumentListResponse wraps document listings.
type DocumentListResponse struct {
	Documents []models.Summary `json:"documents" validate:"required"`
	Total     int              `json:"total" example:"12" validate:"required"`
}

// ContentResponse wraps raw document content.
type ContentResponse struct {
	ID      int    `json:"id" example:"42" validate:"required"`
	Content string `json:"content" example:"---\nstatus: draft\n---\n# Title" validate:"required"`
}

// VersionListResponse wraps a document's version history.
type VersionListResponse struct {
	ID       int                  `json:"id" example:"42" validate:"required"`
	Versions []models.VersionInfo `json:"versions" validate:"required"`
}

// DiffResponse wraps a chapter-partitioned diff.
type DiffResponse struct {
	ID      int                    `json:"id" example:"42" validate:"required"`
	Changes []models.ChapterChange `json:"changes" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}
