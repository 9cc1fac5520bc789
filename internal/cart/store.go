package cart

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// ErrNotFound indicates the requested cart could not be located.
var ErrNotFound = errors.New("cart not found")

// ErrInvalidInput is returned when the provided payload is invalid.
var ErrInvalidInput = errors.New("invalid input")

// Cart is a buyer's working cart. Carts live in Redis for the duration of the
// checkout session and expire on their own.
type Cart struct {
	ID        string           `json:"id"`
	Lines     []NormalizedLine `json:"lines"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// Store persists carts in Redis keyed by cart id.
type Store struct {
	R   *redis.Client
	TTL time.Duration
	Now func() time.Time
}

func (s *Store) ttl() time.Duration {
	if s == nil || s.TTL <= 0 {
		return 24 * time.Hour
	}
	return s.TTL
}

func (s *Store) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func cartKey(id string) string { return "cart:" + id }

// Create allocates an empty cart with a server-issued id.
func (s *Store) Create(ctx context.Context) (Cart, error) {
	if s == nil || s.R == nil {
		return Cart{}, errors.New("cart store not configured")
	}
	now := s.now()
	c := Cart{ID: uuid.NewString(), Lines: []NormalizedLine{}, CreatedAt: now, UpdatedAt: now}
	if err := s.write(ctx, c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

// Get loads a cart by id.
func (s *Store) Get(ctx context.Context, id string) (Cart, error) {
	if s == nil || s.R == nil {
		return Cart{}, errors.New("cart store not configured")
	}
	if id == "" {
		return Cart{}, ErrInvalidInput
	}
	data, err := s.R.Get(ctx, cartKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Cart{}, ErrNotFound
		}
		return Cart{}, err
	}
	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

// Save persists the cart and refreshes its expiry.
func (s *Store) Save(ctx context.Context, c Cart) error {
	if s == nil || s.R == nil {
		return errors.New("cart store not configured")
	}
	if c.ID == "" {
		return ErrInvalidInput
	}
	c.UpdatedAt = s.now()
	return s.write(ctx, c)
}

// Delete discards the cart at the end of a checkout session.
func (s *Store) Delete(ctx context.Context, id string) error {
	if s == nil || s.R == nil {
		return errors.New("cart store not configured")
	}
	return s.R.Del(ctx, cartKey(id)).Err()
}

func (s *Store) write(ctx context.Context, c Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.R.Set(ctx, cartKey(c.ID), data, s.ttl()).Err()
}
