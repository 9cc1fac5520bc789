package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/corebit/backend-market/internal/inventory"
	"github.com/corebit/backend-market/internal/lock"
	"github.com/corebit/backend-market/internal/obs"
)

// TypeInventoryRefresh is the asynq task type for rebuilding a product's
// stock timeline cache.
const TypeInventoryRefresh = "inventory:refresh"

// InventoryRefreshPayload carries the product and window for a refresh task.
type InventoryRefreshPayload struct {
	ProductID string `json:"productId"`
	Days      int    `json:"days"`
}

// NewInventoryRefreshTask builds the asynq task for a refresh request.
func NewInventoryRefreshTask(productID uuid.UUID, days int) (*asynq.Task, error) {
	payload, err := json.Marshal(InventoryRefreshPayload{ProductID: productID.String(), Days: days})
	if err != nil {
		return nil, fmt.Errorf("marshal refresh payload: %w", err)
	}
	return asynq.NewTask(TypeInventoryRefresh, payload, asynq.MaxRetry(3), asynq.Timeout(time.Minute)), nil
}

// Enqueuer submits background tasks through asynq.
type Enqueuer struct {
	Client *asynq.Client
}

// EnqueueRefresh queues a timeline rebuild for productID covering the given
// trailing window in days.
func (e Enqueuer) EnqueueRefresh(ctx context.Context, productID uuid.UUID, days int) error {
	if e.Client == nil {
		return fmt.Errorf("task client not configured")
	}
	task, err := NewInventoryRefreshTask(productID, days)
	if err != nil {
		return err
	}
	if _, err := e.Client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("enqueue %s: %w", TypeInventoryRefresh, err)
	}
	return nil
}

// InventoryWorker handles inventory refresh tasks. A Redis lock keyed by
// product keeps concurrent refreshes of the same product from racing.
type InventoryWorker struct {
	Svc     *inventory.Service
	Locker  lock.Locker
	LockTTL time.Duration
	Logger  zerolog.Logger
}

// HandleRefresh processes a single inventory:refresh task.
func (w *InventoryWorker) HandleRefresh(ctx context.Context, task *asynq.Task) error {
	var payload InventoryRefreshPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		obs.ObserveTimelineRefresh("error")
		return fmt.Errorf("unmarshal refresh payload: %w: %w", err, asynq.SkipRetry)
	}
	productID, err := uuid.Parse(payload.ProductID)
	if err != nil {
		obs.ObserveTimelineRefresh("error")
		return fmt.Errorf("parse product id %q: %w: %w", payload.ProductID, err, asynq.SkipRetry)
	}

	ttl := w.LockTTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	key := "lock:inv:refresh:" + payload.ProductID
	err = w.Locker.TryWithLock(ctx, key, ttl, func(ctx context.Context) error {
		_, err := w.Svc.Refresh(ctx, productID, payload.Days)
		return err
	})
	switch {
	case err == nil:
		obs.ObserveTimelineRefresh("ok")
		w.Logger.Info().Str("product_id", payload.ProductID).Int("days", payload.Days).Msg("stock timeline refreshed")
		return nil
	case errors.Is(err, lock.ErrNotAcquired):
		obs.ObserveTimelineRefresh("skipped")
		w.Logger.Debug().Str("product_id", payload.ProductID).Msg("refresh already in progress, skipping")
		return nil
	default:
		obs.ObserveTimelineRefresh("error")
		return fmt.Errorf("refresh timeline for %s: %w", payload.ProductID, err)
	}
}

// NewMux registers all worker handlers on an asynq mux.
func NewMux(w *InventoryWorker) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeInventoryRefresh, w.HandleRefresh)
	return mux
}
