package handler

import (
	"net/http"

	"github.com/trackshelf/trackshelf-backend/internal/shelf/domain"
	"github.com/trackshelf/trackshelf-backend/internal/shelf/service"
	"github.com/trackshelf/trackshelf-backend/pkg/httputil"
	"github.com/trackshelf/trackshelf-backend/pkg/logger"
)

// SettingsHandler handles the warn thresholds
type SettingsHandler struct {
	service *service.ShelfService
	logger  *logger.Logger
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(svc *service.ShelfService, log *logger.Logger) *SettingsHandler {
	return &SettingsHandler{service: svc, logger: log}
}

// Get returns the owner's thresholds, or the defaults
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, err := requestOwner(r)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	th, err := h.service.GetThresholds(r.Context(), ownerID)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, th)
}

// Update stores new thresholds. Out-of-range values are clamped, not rejected.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID, err := requestOwner(r)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	var req thresholdsRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}

	th, err := h.service.SaveThresholds(r.Context(), ownerID, domain.Thresholds{
		SoonDays:         req.SoonDays,
		ExpiredGraceDays: req.ExpiredGraceDays,
	})
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, th)
}
