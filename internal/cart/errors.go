package cart

import "errors"

var (
	// ErrItemNotFound means the cart row id no longer exists (SetQuantity on
	// a removed row). Deletes never return it: removal is idempotent.
	ErrItemNotFound = errors.New("cart item not found")

	// ErrAddToCartFailed wraps any remote failure during AddToCart so callers
	// can treat the whole operation as not-applied.
	ErrAddToCartFailed = errors.New("add to cart failed")
)
