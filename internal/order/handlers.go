package order

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/corebit/backend-market/internal/common"
	"github.com/corebit/backend-market/internal/repo"
)

// Store provides read access to persisted orders.
type Store interface {
	GetOrder(ctx context.Context, id string) (repo.Order, error)
	ListOrderItems(ctx context.Context, orderID string) ([]repo.OrderItem, error)
}

// Handler exposes order read endpoints.
type Handler struct {
	Store Store
}

// Get returns the order with its items and persisted totals breakdown.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order store not configured", nil)
		return
	}
	id := chi.URLParam(r, "orderId")
	o, err := h.Store.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "order not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to load order", nil)
		return
	}
	items, err := h.Store.ListOrderItems(r.Context(), id)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to load order items", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"id":        o.ID,
			"status":    o.Status,
			"currency":  o.Currency,
			"totals":    o.Totals,
			"createdAt": o.CreatedAt,
			"items":     itemViews(items),
		},
	})
}

func itemViews(items []repo.OrderItem) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		out = append(out, map[string]any{
			"lineId":     it.LineID,
			"title":      it.Title,
			"category":   it.Category,
			"diameter":   it.Diameter,
			"qty":        it.Qty,
			"unitPrice":  it.UnitPrice,
			"retipAdded": it.RetipAdded,
			"retipPrice": it.RetipPrice,
		})
	}
	return out
}
