package inventory

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/corebit/backend-market/internal/common"
)

// AdminHandler exposes cache maintenance endpoints.
type AdminHandler struct {
	Enqueue Enqueuer
}

// Refresh schedules a background rebuild of a product's timeline cache.
func (h *AdminHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if h.Enqueue == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "refresh queue not configured", nil)
		return
	}
	var payload struct {
		ProductID string `json:"productId"`
		Days      int    `json:"days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	productID, err := uuid.Parse(payload.ProductID)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", nil)
		return
	}
	if payload.Days < 0 {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "days must not be negative", nil)
		return
	}
	if err := h.Enqueue.EnqueueRefresh(r.Context(), productID, payload.Days); err != nil {
		common.JSONError(w, http.StatusInternalServerError, "QUEUE_ERROR", "unable to enqueue refresh", nil)
		return
	}
	common.JSON(w, http.StatusAccepted, map[string]any{
		"data": map[string]any{"productId": productID.String(), "status": "queued"},
	})
}
