package handler

import (
	"net/http"

	"github.com/trackshelf/trackshelf-backend/internal/shelf/domain"
	"github.com/trackshelf/trackshelf-backend/pkg/httputil"
)

type catalogResponse struct {
	Units             []string          `json:"units"`
	Categories        []string          `json:"categories"`
	DefaultUnit       string            `json:"default_unit"`
	CatchAllCategory  string            `json:"catch_all_category"`
	DefaultThresholds domain.Thresholds `json:"default_thresholds"`
	MaxSoonDays       int               `json:"max_soon_days"`
}

// CatalogHandler serves the allowed units and categories for form pickers
type CatalogHandler struct {
	body catalogResponse
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalog *domain.Catalog, defaults domain.Thresholds) *CatalogHandler {
	return &CatalogHandler{body: catalogResponse{
		Units:             catalog.Units(),
		Categories:        catalog.Categories(),
		DefaultUnit:       catalog.DefaultUnit(),
		CatchAllCategory:  catalog.CatchAll(),
		DefaultThresholds: defaults.Clamp(),
		MaxSoonDays:       domain.MaxSoonDays,
	}}
}

// Get returns the catalog
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, http.StatusOK, h.body)
}
