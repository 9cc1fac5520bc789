package order

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/corebit/backend-market/internal/pricing"
	"github.com/corebit/backend-market/internal/repo"
)

type fakeStore struct {
	order repo.Order
	items []repo.OrderItem
	err   error
}

func (f fakeStore) GetOrder(_ context.Context, id string) (repo.Order, error) {
	if f.err != nil {
		return repo.Order{}, f.err
	}
	return f.order, nil
}

func (f fakeStore) ListOrderItems(context.Context, string) ([]repo.OrderItem, error) {
	return f.items, nil
}

func routed(req *http.Request, orderID string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("orderId", orderID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestGetOrder(t *testing.T) {
	store := fakeStore{
		order: repo.Order{
			ID:        "ord-1",
			CartID:    "cart-1",
			Status:    "PENDING_PAYMENT",
			Currency:  "USD",
			Totals:    pricing.Totals{Subtotal: 20000, RetipTotal: 10800, Tax: 218, Commission: 1000, GrandTotal: 32018},
			CreatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		},
		items: []repo.OrderItem{
			{OrderID: "ord-1", LineID: "line-1", Title: `4" Core Bit`, Category: "Core Drill Bits", Diameter: 4, Qty: 2, UnitPrice: 10000, RetipAdded: true, RetipPrice: 10800},
		},
	}
	h := &Handler{Store: store}

	rr := httptest.NewRecorder()
	h.Get(rr, routed(httptest.NewRequest(http.MethodGet, "/api/v1/orders/ord-1", nil), "ord-1"))
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Data struct {
			ID     string `json:"id"`
			Status string `json:"status"`
			Totals struct {
				GrandTotal int64 `json:"grandTotal"`
			} `json:"totals"`
			Items []struct {
				LineID     string `json:"lineId"`
				RetipPrice int64  `json:"retipPrice"`
			} `json:"items"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, "ord-1", body.Data.ID)
	require.Equal(t, "PENDING_PAYMENT", body.Data.Status)
	require.Equal(t, int64(32018), body.Data.Totals.GrandTotal)
	require.Len(t, body.Data.Items, 1)
	require.Equal(t, int64(10800), body.Data.Items[0].RetipPrice)
}

func TestGetOrderNotFound(t *testing.T) {
	h := &Handler{Store: fakeStore{err: repo.ErrNotFound}}
	rr := httptest.NewRecorder()
	h.Get(rr, routed(httptest.NewRequest(http.MethodGet, "/api/v1/orders/nope", nil), "nope"))
	require.Equal(t, http.StatusNotFound, rr.Code)
}
