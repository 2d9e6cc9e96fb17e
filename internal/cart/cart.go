package cart

import (
	"github.com/merakit/storefront-backend/internal/pricing"
	"github.com/merakit/storefront-backend/internal/product"
)

// LineItem is one product-and-quantity entry in a user's cart. Identity is
// the cart row id, not the product id; the reconciler keeps at most one row
// per (user, product).
type LineItem struct {
	ID        int             `json:"id"`
	UserID    int             `json:"userId"`
	ProductID int             `json:"productId"`
	Quantity  int             `json:"quantity"`
	Product   product.Product `json:"product"`
}

// PricingLines converts cart items into the shape the pricing engine takes,
// using the live product snapshot price at call time.
func PricingLines(items []LineItem) []pricing.Line {
	lines := make([]pricing.Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, pricing.Line{UnitPrice: it.Product.Price, Quantity: it.Quantity})
	}
	return lines
}
