package pricing

import "math"

// TaxRate is the flat tax applied to every order subtotal.
const TaxRate = 0.10

// ShippingFee is charged once per non-empty order.
const ShippingFee = 10.0

// Line is the minimal shape the engine prices: a unit price and a quantity.
// Cart and order packages convert their richer line items into this.
type Line struct {
	UnitPrice float64
	Quantity  int
}

// Totals is the derived money breakdown for a set of lines.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Shipping float64 `json:"shipping"`
	Total    float64 `json:"total"`
}

// ComputeTotals derives subtotal, tax, shipping and total from the given
// lines. It is pure: callers reject negative prices and quantities before
// invoking it. An empty slice prices to all zeroes (no shipping fee).
func ComputeTotals(lines []Line) Totals {
	var subtotal float64
	for _, l := range lines {
		subtotal += l.UnitPrice * float64(l.Quantity)
	}
	subtotal = round2(subtotal)

	var shipping float64
	if len(lines) > 0 {
		shipping = ShippingFee
	}

	// Total is the plain sum of the rounded parts so the identity
	// total == subtotal + tax + shipping holds exactly.
	tax := round2(subtotal * TaxRate)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    subtotal + tax + shipping,
	}
}

// round2 rounds to cents so repeated float math cannot drift the identity
// total == subtotal + tax + shipping.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
