package cart

import "context"

// Repository provides access to the remote cart_items rows. Every returned
// LineItem carries its product snapshot rejoined at read time.
type Repository interface {
	// Upsert atomically adds delta to the (userID, productID) row quantity,
	// inserting the row when absent. The server-side upsert closes the
	// read-then-write race that two concurrent adds would otherwise hit.
	Upsert(ctx context.Context, userID, productID, delta int) (LineItem, error)

	// SetQuantity overwrites the row quantity (last-write-wins). The row
	// must belong to userID; a missing or foreign row returns
	// ErrItemNotFound.
	SetQuantity(ctx context.Context, userID, itemID, quantity int) (LineItem, error)

	// DeleteByID removes one row owned by userID. Deleting an absent or
	// foreign row is a no-op.
	DeleteByID(ctx context.Context, userID, itemID int) error

	// DeleteByUser removes every row owned by userID. Idempotent.
	DeleteByUser(ctx context.Context, userID int) error

	// ListByUser returns the user's rows ordered by row id.
	ListByUser(ctx context.Context, userID int) ([]LineItem, error)
}
