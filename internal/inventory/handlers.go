package inventory

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/corebit/backend-market/internal/chart"
	"github.com/corebit/backend-market/internal/common"
)

// Handler exposes seller dashboard timeline endpoints.
type Handler struct {
	Svc         *Service
	DefaultView chart.View
}

func (h *Handler) view(r *http.Request) chart.View {
	v := h.DefaultView
	if v.Width <= 0 {
		v.Width = 600
	}
	if v.Height <= 0 {
		v.Height = 220
	}
	q := r.URL.Query()
	v.Width = common.ParseFloatDefault(q.Get("viewW"), v.Width)
	v.Height = common.ParseFloatDefault(q.Get("viewH"), v.Height)
	v.Margin = common.ParseFloatDefault(q.Get("margin"), v.Margin)
	return v
}

// Timeline returns reconstructed running stock plus chart-ready coordinates.
func (h *Handler) Timeline(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "inventory service not configured", nil)
		return
	}
	productID, err := uuid.Parse(chi.URLParam(r, "productId"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", nil)
		return
	}
	days := common.AtoiDefault(r.URL.Query().Get("days"), 0)
	if days < 0 {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "days must not be negative", nil)
		return
	}
	tl, err := h.Svc.Timeline(r.Context(), productID, days)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INVENTORY_ERROR", "unable to load stock timeline", nil)
		return
	}
	view := h.view(r)
	values := make([]int, len(tl.Points))
	for i, p := range tl.Points {
		values[i] = p.DisplayStock
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"timeline": tl,
			"chart":    chart.Scale(values, view),
			"view":     view,
		},
	})
}
