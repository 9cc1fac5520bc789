package pricing

// Money represents a monetary value stored in minor units.
type Money = int64

// Item describes a cart line used for totals calculation.
type Item struct {
	Qty        int
	UnitPrice  Money
	RetipPrice Money
	RetipAdded bool
}

// Totals aggregates the computed order components.
type Totals struct {
	Subtotal   Money `json:"subtotal"`
	RetipTotal Money `json:"retipTotal"`
	Tax        Money `json:"tax"`
	Commission Money `json:"commissionFee"`
	Shipping   Money `json:"shipping"`
	GrandTotal Money `json:"grandTotal"`
}

// Rates carries the configured pricing rates. Tax and commission are basis
// points applied to the item subtotal; shipping is a flat amount.
type Rates struct {
	TaxBps        int
	CommissionBps int
	Shipping      Money
}

// Compute folds line items into order totals. Tax and commission are assessed
// on the item subtotal only: retip charges are a pass-through service fee and
// stay out of both bases. An empty item list yields zero totals with the flat
// shipping carried through.
func Compute(items []Item, r Rates) Totals {
	var subtotal, retip Money
	for _, it := range items {
		if it.Qty <= 0 {
			continue
		}
		subtotal += Money(it.Qty) * it.UnitPrice
		if it.RetipAdded && it.RetipPrice > 0 {
			retip += it.RetipPrice
		}
	}
	tax := applyBps(subtotal, r.TaxBps)
	commission := applyBps(subtotal, r.CommissionBps)
	shipping := r.Shipping
	if shipping < 0 {
		shipping = 0
	}
	return Totals{
		Subtotal:   subtotal,
		RetipTotal: retip,
		Tax:        tax,
		Commission: commission,
		Shipping:   shipping,
		GrandTotal: subtotal + tax + commission + shipping + retip,
	}
}

func applyBps(amount Money, bps int) Money {
	if amount <= 0 || bps <= 0 {
		return 0
	}
	return (amount * Money(bps)) / 10000
}
