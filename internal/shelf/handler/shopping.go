package handler

import (
	"net/http"

	"github.com/trackshelf/trackshelf-backend/internal/shelf/domain"
	"github.com/trackshelf/trackshelf-backend/internal/shelf/service"
	"github.com/trackshelf/trackshelf-backend/pkg/httputil"
	"github.com/trackshelf/trackshelf-backend/pkg/logger"
)

// ShoppingHandler handles the shopping list
type ShoppingHandler struct {
	service *service.ShoppingService
	logger  *logger.Logger
}

// NewShoppingHandler creates a new shopping list handler
func NewShoppingHandler(svc *service.ShoppingService, log *logger.Logger) *ShoppingHandler {
	return &ShoppingHandler{service: svc, logger: log}
}

// Get returns the whole list
func (h *ShoppingHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, err := requestOwner(r)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	list, err := h.service.Load(r.Context(), ownerID)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, list)
}

// Save replaces the whole list
func (h *ShoppingHandler) Save(w http.ResponseWriter, r *http.Request) {
	ownerID, err := requestOwner(r)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	var list domain.ShoppingList
	if err := httputil.DecodeJSON(r, &list); err != nil {
		httputil.Error(w, r, err)
		return
	}

	saved, err := h.service.Save(r.Context(), ownerID, list)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, saved)
}
