package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/trackshelf/trackshelf-backend/internal/shelf/domain"
	"github.com/trackshelf/trackshelf-backend/internal/shelf/service"
	"github.com/trackshelf/trackshelf-backend/pkg/httputil"
	"github.com/trackshelf/trackshelf-backend/pkg/logger"
)

// ItemHandler handles item endpoints
type ItemHandler struct {
	service   *service.ShelfService
	validator *httputil.Validator
	logger    *logger.Logger
}

// NewItemHandler creates a new item handler
func NewItemHandler(svc *service.ShelfService, catalog *domain.Catalog, log *logger.Logger) *ItemHandler {
	return &ItemHandler{
		service:   svc,
		validator: newValidator(catalog),
		logger:    log,
	}
}

// List returns the annotated shelf, filtered and sorted by the query string
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, err := requestOwner(r)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	q, err := parseQuery(r)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	view, err := h.service.ListItems(r.Context(), ownerID, q)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSONWithMeta(w, http.StatusOK, view, &httputil.Meta{Total: len(view.Items)})
}

// Replace swaps the whole shelf for the submitted items
func (h *ItemHandler) Replace(w http.ResponseWriter, r *http.Request) {
	ownerID, err := requestOwner(r)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	var req replaceItemsRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.Error(w, r, err)
		return
	}

	items := make([]domain.Item, len(req.Items))
	for i, it := range req.Items {
		items[i] = it.toItem()
	}

	n, err := h.service.ReplaceAll(r.Context(), ownerID, items)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]int{"saved": n})
}

// Get gets an item by ID
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, err := requestOwner(r)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	entry, err := h.service.GetItem(r.Context(), ownerID, chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, entry)
}

// Create appends a new item
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, err := requestOwner(r)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	var req itemRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.Error(w, r, err)
		return
	}

	entry, err := h.service.CreateItem(r.Context(), ownerID, req.toItem())
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.Created(w, entry)
}

// Update overwrites an item
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID, err := requestOwner(r)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	var req itemRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.Error(w, r, err)
		return
	}

	entry, err := h.service.UpdateItem(r.Context(), ownerID, chi.URLParam(r, "id"), req.toItem())
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, entry)
}

// Delete deletes an item
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, err := requestOwner(r)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	if err := h.service.DeleteItem(r.Context(), ownerID, chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.NoContent(w)
}
