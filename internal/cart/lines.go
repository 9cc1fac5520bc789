package cart

import (
	"errors"
	"fmt"
	"math"

	validator "github.com/go-playground/validator/v10"

	"github.com/corebit/backend-market/internal/pricing"
)

// RetippableCategory is the product category eligible for the retip service.
const RetippableCategory = "Core Drill Bits"

// ErrInvalidLine is returned when a raw cart line fails boundary validation.
var ErrInvalidLine = errors.New("invalid cart line")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Line is a raw cart line as supplied by the storefront.
type Line struct {
	ID        string        `json:"id" validate:"required"`
	Title     string        `json:"title" validate:"required"`
	Category  string        `json:"category"`
	Diameter  float64       `json:"diameter,omitempty"`
	UnitPrice pricing.Money `json:"unitPrice" validate:"gte=0"`
	Qty       int           `json:"qty" validate:"gte=1"`
}

// NormalizedLine augments a raw line with its retip fields. RetipAdded may
// only be true when the line carries a positive RetipPrice.
type NormalizedLine struct {
	Line
	RetipAdded bool          `json:"retipAdded"`
	RetipPrice pricing.Money `json:"retipPrice"`
}

// ValidateLine rejects malformed numeric input before it can reach the
// totals engine. Unknown diameters are not an error here; they resolve to a
// zero retip fee during normalization.
func ValidateLine(l Line) error {
	if math.IsNaN(l.Diameter) || math.IsInf(l.Diameter, 0) {
		return fmt.Errorf("%w: diameter is not a finite number", ErrInvalidLine)
	}
	if l.Diameter < 0 {
		return fmt.Errorf("%w: diameter must not be negative", ErrInvalidLine)
	}
	if err := validate.Struct(l); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLine, err)
	}
	return nil
}

// Normalize maps raw lines to normalized ones. The input is never mutated.
// Lines in the retippable category pick up the schedule fee for their
// diameter; everything else normalizes to a zero fee.
func Normalize(lines []Line) ([]NormalizedLine, error) {
	out := make([]NormalizedLine, 0, len(lines))
	for _, l := range lines {
		if err := ValidateLine(l); err != nil {
			return nil, err
		}
		out = append(out, NormalizeLine(l))
	}
	return out, nil
}

// NormalizeLine normalizes a single raw line.
func NormalizeLine(l Line) NormalizedLine {
	var fee pricing.Money
	if l.Category == RetippableCategory {
		fee = pricing.RetipFee(l.Diameter)
	}
	return NormalizedLine{Line: l, RetipAdded: false, RetipPrice: fee}
}

// AddRetip returns a copy of lines with the retip flag set on the line
// matching id. Lines without a schedule fee cannot carry the flag; an absent
// id is a no-op.
func AddRetip(lines []NormalizedLine, id string) []NormalizedLine {
	return setRetip(lines, id, true)
}

// RemoveRetip is the symmetric inverse of AddRetip.
func RemoveRetip(lines []NormalizedLine, id string) []NormalizedLine {
	return setRetip(lines, id, false)
}

func setRetip(lines []NormalizedLine, id string, added bool) []NormalizedLine {
	out := make([]NormalizedLine, len(lines))
	copy(out, lines)
	for i := range out {
		if out[i].ID != id {
			continue
		}
		if added && out[i].RetipPrice <= 0 {
			continue
		}
		out[i].RetipAdded = added
	}
	return out
}

// Items converts normalized lines into pricing engine inputs.
func Items(lines []NormalizedLine) []pricing.Item {
	items := make([]pricing.Item, 0, len(lines))
	for _, l := range lines {
		items = append(items, pricing.Item{
			Qty:        l.Qty,
			UnitPrice:  l.UnitPrice,
			RetipPrice: l.RetipPrice,
			RetipAdded: l.RetipAdded,
		})
	}
	return items
}
