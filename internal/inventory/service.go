package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// Querier defines the database access required for timeline reconstruction.
type Querier interface {
	ListDaySamples(ctx context.Context, productID uuid.UUID, from time.Time) ([]DaySample, error)
}

// Timeline is the seller dashboard view of a product's running stock.
type Timeline struct {
	ProductID string       `json:"productId"`
	Points    []StockPoint `json:"points"`
	Labels    []string     `json:"labels"`
}

// Enqueuer schedules a background timeline refresh.
type Enqueuer interface {
	EnqueueRefresh(ctx context.Context, productID uuid.UUID, days int) error
}

// Service reconstructs stock timelines with a Redis read-through cache.
type Service struct {
	Q           Querier
	R           *redis.Client
	TTL         time.Duration
	DefaultDays int
	MaxLabels   int
	Now         func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) days(requested int) int {
	if requested > 0 {
		return requested
	}
	if s.DefaultDays > 0 {
		return s.DefaultDays
	}
	return 30
}

func (s *Service) maxLabels() int {
	if s.MaxLabels > 0 {
		return s.MaxLabels
	}
	return 5
}

func timelineKey(productID uuid.UUID, days int) string {
	return fmt.Sprintf("inv:tl:%s:%d", productID, days)
}

// Timeline returns the reconstructed running stock for the product over the
// trailing day window, serving from cache when possible.
func (s *Service) Timeline(ctx context.Context, productID uuid.UUID, days int) (Timeline, error) {
	if s == nil || s.Q == nil {
		return Timeline{}, fmt.Errorf("inventory service not configured")
	}
	days = s.days(days)
	if tl, ok := s.fromCache(ctx, timelineKey(productID, days)); ok {
		return tl, nil
	}
	return s.Refresh(ctx, productID, days)
}

// Refresh rebuilds the timeline from the day samples and overwrites the
// cache entry. The worker uses this to warm dashboards off the hot path.
func (s *Service) Refresh(ctx context.Context, productID uuid.UUID, days int) (Timeline, error) {
	if s == nil || s.Q == nil {
		return Timeline{}, fmt.Errorf("inventory service not configured")
	}
	days = s.days(days)
	from := s.now().AddDate(0, 0, -days)
	samples, err := s.Q.ListDaySamples(ctx, productID, from)
	if err != nil {
		return Timeline{}, fmt.Errorf("list day samples: %w", err)
	}
	tl := Timeline{
		ProductID: productID.String(),
		Points:    Reconstruct(samples),
		Labels:    Labels(samples, s.maxLabels()),
	}
	s.store(ctx, timelineKey(productID, days), tl)
	return tl, nil
}

func (s *Service) fromCache(ctx context.Context, key string) (Timeline, bool) {
	if s.R == nil || s.TTL <= 0 {
		return Timeline{}, false
	}
	data, err := s.R.Get(ctx, key).Bytes()
	if err != nil {
		return Timeline{}, false
	}
	var tl Timeline
	if err := json.Unmarshal(data, &tl); err != nil {
		return Timeline{}, false
	}
	return tl, true
}

func (s *Service) store(ctx context.Context, key string, tl Timeline) {
	if s.R == nil || s.TTL <= 0 {
		return
	}
	data, err := json.Marshal(tl)
	if err != nil {
		return
	}
	_ = s.R.Set(ctx, key, data, s.TTL).Err()
}
