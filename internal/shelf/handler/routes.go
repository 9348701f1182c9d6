package handler

import (
	"github.com/go-chi/chi/v5"
)

// Handlers groups everything mounted under /api/v1/shelf
type Handlers struct {
	Items      *ItemHandler
	Settings   *SettingsHandler
	Extraction *ExtractionHandler
	Shopping   *ShoppingHandler
	Catalog    *CatalogHandler
}

// Routes registers the shelf API on r. Owner resolution happens in the
// middleware the caller installs before.
func (h *Handlers) Routes(r chi.Router) {
	r.Route("/api/v1/shelf", func(r chi.Router) {
		r.Get("/catalog", h.Catalog.Get)

		r.Route("/items", func(r chi.Router) {
			r.Get("/", h.Items.List)
			r.Put("/", h.Items.Replace)
			r.Post("/", h.Items.Create)
			r.Get("/{id}", h.Items.Get)
			r.Put("/{id}", h.Items.Update)
			r.Delete("/{id}", h.Items.Delete)
		})

		r.Get("/settings", h.Settings.Get)
		r.Put("/settings", h.Settings.Update)

		r.Route("/extract", func(r chi.Router) {
			r.Post("/text", h.Extraction.Text)
			r.Post("/speech", h.Extraction.Speech)
			r.Post("/image", h.Extraction.Image)
		})

		r.Get("/shopping-list", h.Shopping.Get)
		r.Put("/shopping-list", h.Shopping.Save)
	})
}
