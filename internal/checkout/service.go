package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/corebit/backend-market/internal/cart"
	"github.com/corebit/backend-market/internal/obs"
	"github.com/corebit/backend-market/internal/pricing"
	"github.com/corebit/backend-market/internal/repo"
)

// StatusPendingPayment is the initial order state handed to the payment flow.
const StatusPendingPayment = "PENDING_PAYMENT"

// ErrEmptyCart is returned when checking out a cart with no lines.
var ErrEmptyCart = errors.New("cart is empty")

// Store persists the checkout snapshot.
type Store interface {
	CreateOrder(ctx context.Context, o repo.Order, items []repo.OrderItem) error
}

// Input is the checkout request payload.
type Input struct {
	CartID string  `json:"cartId"`
	Notes  *string `json:"notes"`
}

// Output is returned after the order snapshot is persisted.
type Output struct {
	OrderID string         `json:"orderId"`
	Status  string         `json:"status"`
	Totals  pricing.Totals `json:"totals"`
}

// Service turns a cart into a persisted order with its totals breakdown.
type Service struct {
	Carts    *cart.Store
	Orders   Store
	Rates    pricing.Rates
	Currency string
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Create snapshots the cart into an order. Totals are recomputed from the
// stored lines at this moment; the cart is discarded once the order exists.
func (s *Service) Create(ctx context.Context, in Input) (Output, error) {
	if s == nil || s.Carts == nil || s.Orders == nil {
		return Output{}, errors.New("checkout service not configured")
	}
	if in.CartID == "" {
		return Output{}, fmt.Errorf("%w: cartId is required", cart.ErrInvalidInput)
	}
	c, err := s.Carts.Get(ctx, in.CartID)
	if err != nil {
		return Output{}, err
	}
	if len(c.Lines) == 0 {
		return Output{}, ErrEmptyCart
	}

	totals := pricing.Compute(cart.Items(c.Lines), s.Rates)
	order := repo.Order{
		ID:        uuid.NewString(),
		CartID:    c.ID,
		Status:    StatusPendingPayment,
		Currency:  s.Currency,
		Totals:    totals,
		CreatedAt: s.now(),
	}
	items := make([]repo.OrderItem, 0, len(c.Lines))
	for _, l := range c.Lines {
		items = append(items, repo.OrderItem{
			OrderID:    order.ID,
			LineID:     l.ID,
			Title:      l.Title,
			Category:   l.Category,
			Diameter:   l.Diameter,
			Qty:        l.Qty,
			UnitPrice:  l.UnitPrice,
			RetipAdded: l.RetipAdded,
			RetipPrice: l.RetipPrice,
		})
	}
	if err := s.Orders.CreateOrder(ctx, order, items); err != nil {
		return Output{}, fmt.Errorf("create order: %w", err)
	}

	// The cart's life ends with the checkout session.
	_ = s.Carts.Delete(ctx, c.ID)

	obs.ObserveCheckout(totals)

	return Output{OrderID: order.ID, Status: order.Status, Totals: totals}, nil
}
