package cart

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/corebit/backend-market/internal/pricing"
)

// Service encapsulates cart mutations over the Redis-backed store.
type Service struct {
	Store  *Store
	Rates  pricing.Rates
	Logger zerolog.Logger
}

// AddLine validates, normalizes and appends a line. A line whose id is
// already present has its quantity incremented instead.
func (s *Service) AddLine(ctx context.Context, cartID string, line Line) (Cart, error) {
	if s == nil || s.Store == nil {
		return Cart{}, fmt.Errorf("cart service not configured")
	}
	if err := ValidateLine(line); err != nil {
		return Cart{}, err
	}
	c, err := s.Store.Get(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	merged := false
	for i := range c.Lines {
		if c.Lines[i].ID == line.ID {
			c.Lines[i].Qty += line.Qty
			merged = true
			break
		}
	}
	if !merged {
		c.Lines = append(c.Lines, NormalizeLine(line))
	}
	if err := s.Store.Save(ctx, c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

// UpdateQty replaces the quantity of the line matching lineID.
func (s *Service) UpdateQty(ctx context.Context, cartID, lineID string, qty int) (Cart, error) {
	if s == nil || s.Store == nil {
		return Cart{}, fmt.Errorf("cart service not configured")
	}
	if qty < 1 {
		return Cart{}, fmt.Errorf("%w: qty must be at least 1", ErrInvalidLine)
	}
	c, err := s.Store.Get(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	found := false
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			c.Lines[i].Qty = qty
			found = true
			break
		}
	}
	if !found {
		return Cart{}, ErrNotFound
	}
	if err := s.Store.Save(ctx, c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

// RemoveLine deletes the line matching lineID. Absent lines are a no-op.
func (s *Service) RemoveLine(ctx context.Context, cartID, lineID string) (Cart, error) {
	if s == nil || s.Store == nil {
		return Cart{}, fmt.Errorf("cart service not configured")
	}
	c, err := s.Store.Get(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	kept := c.Lines[:0]
	for _, l := range c.Lines {
		if l.ID != lineID {
			kept = append(kept, l)
		}
	}
	c.Lines = kept
	if err := s.Store.Save(ctx, c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

// AttachRetip flags the line for the retip service. Lines outside the retip
// schedule keep their flag off; the request is logged so the silent zero-fee
// fallback stays visible to operators.
func (s *Service) AttachRetip(ctx context.Context, cartID, lineID string) (Cart, error) {
	if s == nil || s.Store == nil {
		return Cart{}, fmt.Errorf("cart service not configured")
	}
	c, err := s.Store.Get(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	for _, l := range c.Lines {
		if l.ID == lineID && l.Category == RetippableCategory && l.RetipPrice == 0 {
			s.Logger.Warn().
				Str("cart_id", cartID).
				Str("line_id", lineID).
				Float64("diameter", l.Diameter).
				Msg("retip requested for diameter outside fee schedule")
		}
	}
	c.Lines = AddRetip(c.Lines, lineID)
	if err := s.Store.Save(ctx, c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

// DetachRetip clears the retip flag on the line matching lineID.
func (s *Service) DetachRetip(ctx context.Context, cartID, lineID string) (Cart, error) {
	if s == nil || s.Store == nil {
		return Cart{}, fmt.Errorf("cart service not configured")
	}
	c, err := s.Store.Get(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	c.Lines = RemoveRetip(c.Lines, lineID)
	if err := s.Store.Save(ctx, c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

// Quote computes the totals preview for the cart's current lines.
func (s *Service) Quote(c Cart) pricing.Totals {
	return pricing.Compute(Items(c.Lines), s.Rates)
}
