package cart_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/corebit/backend-market/internal/cart"
	"github.com/corebit/backend-market/internal/pricing"
)

type cartEnvelope struct {
	Data struct {
		Cart   cart.Cart      `json:"cart"`
		Totals pricing.Totals `json:"totals"`
	} `json:"data"`
}

type quoteEnvelope struct {
	Data pricing.Totals `json:"data"`
}

func newTestHandler(t *testing.T) *cart.Handler {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc := &cart.Service{
		Store:  &cart.Store{R: client},
		Rates:  pricing.Rates{TaxBps: 109, CommissionBps: 500},
		Logger: zerolog.Nop(),
	}
	return &cart.Handler{Svc: svc}
}

func routed(req *http.Request, params map[string]string) *http.Request {
	routeCtx := chi.NewRouteContext()
	for k, v := range params {
		routeCtx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestCartFlow(t *testing.T) {
	handler := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.Create(rec, httptest.NewRequest(http.MethodPost, "/api/v1/carts", nil))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created cartEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	cartID := created.Data.Cart.ID
	require.NotEmpty(t, cartID)

	line := cart.Line{ID: "line-1", Title: "4in Core Bit", Category: cart.RetippableCategory, Diameter: 4, UnitPrice: 10000, Qty: 2}
	body, _ := json.Marshal(line)
	req := routed(httptest.NewRequest(http.MethodPost, "/api/v1/carts/"+cartID+"/items", bytes.NewReader(body)), map[string]string{"id": cartID})
	rec = httptest.NewRecorder()
	handler.AddItem(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var afterAdd cartEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &afterAdd))
	require.Len(t, afterAdd.Data.Cart.Lines, 1)
	require.EqualValues(t, 10800, afterAdd.Data.Cart.Lines[0].RetipPrice)
	require.EqualValues(t, 20000, afterAdd.Data.Totals.Subtotal)
	require.EqualValues(t, 0, afterAdd.Data.Totals.RetipTotal)

	req = routed(httptest.NewRequest(http.MethodPost, "/api/v1/carts/"+cartID+"/retip/line-1", nil), map[string]string{"id": cartID, "lineId": "line-1"})
	rec = httptest.NewRecorder()
	handler.AttachRetip(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = routed(httptest.NewRequest(http.MethodPost, "/api/v1/carts/"+cartID+"/quote", nil), map[string]string{"id": cartID})
	rec = httptest.NewRecorder()
	handler.Quote(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var quote quoteEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))
	require.EqualValues(t, 20000, quote.Data.Subtotal)
	require.EqualValues(t, 10800, quote.Data.RetipTotal)
	require.EqualValues(t, 20000*109/10000, quote.Data.Tax)
	require.EqualValues(t, 20000*500/10000, quote.Data.Commission)
	require.Equal(t, quote.Data.Subtotal+quote.Data.Tax+quote.Data.Commission+quote.Data.RetipTotal, quote.Data.GrandTotal)
}

func TestCartAddItemRejectsMalformedLine(t *testing.T) {
	handler := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.Create(rec, httptest.NewRequest(http.MethodPost, "/api/v1/carts", nil))
	var created cartEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	cartID := created.Data.Cart.ID

	body, _ := json.Marshal(cart.Line{ID: "x", Title: "Bit", UnitPrice: -5, Qty: 1})
	req := routed(httptest.NewRequest(http.MethodPost, "/api/v1/carts/"+cartID+"/items", bytes.NewReader(body)), map[string]string{"id": cartID})
	rec = httptest.NewRecorder()
	handler.AddItem(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "VALIDATION")
}

func TestCartGetMissing(t *testing.T) {
	handler := newTestHandler(t)
	req := routed(httptest.NewRequest(http.MethodGet, "/api/v1/carts/nope", nil), map[string]string{"id": "nope"})
	rec := httptest.NewRecorder()
	handler.Get(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
