package inventory_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/corebit/backend-market/internal/chart"
	"github.com/corebit/backend-market/internal/inventory"
)

type timelineResponse struct {
	Data struct {
		Timeline inventory.Timeline `json:"timeline"`
		Chart    []chart.PixelPoint `json:"chart"`
		View     chart.View         `json:"view"`
	} `json:"data"`
}

func timelineRequest(t *testing.T, target, productID string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("productId", productID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestTimelineHandler(t *testing.T) {
	base := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	q := &fakeQuerier{samples: []inventory.DaySample{
		{Day: base, Stock: 8, Sold: 2},
		{Day: base.AddDate(0, 0, 1), Stock: 0, Sold: 1},
	}}
	handler := &inventory.Handler{
		Svc:         &inventory.Service{Q: q},
		DefaultView: chart.View{Width: 600, Height: 220, Margin: 16},
	}

	productID := uuid.New()
	rec := httptest.NewRecorder()
	handler.Timeline(rec, timelineRequest(t, "/api/v1/sellers/products/"+productID.String()+"/stock-timeline?days=7", productID.String()))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp timelineResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Timeline.Points, 2)
	require.Equal(t, 8, resp.Data.Timeline.Points[0].DisplayStock)
	require.Equal(t, 6, resp.Data.Timeline.Points[1].DisplayStock)
	require.Len(t, resp.Data.Chart, 2)
	require.Equal(t, 16.0, resp.Data.Chart[0].X)
	require.Equal(t, 584.0, resp.Data.Chart[1].X)
}

func TestTimelineHandlerRejectsBadProductID(t *testing.T) {
	handler := &inventory.Handler{Svc: &inventory.Service{Q: &fakeQuerier{}}}
	rec := httptest.NewRecorder()
	handler.Timeline(rec, timelineRequest(t, "/api/v1/sellers/products/abc/stock-timeline", "abc"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
