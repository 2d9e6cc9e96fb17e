package order

import "context"

// Repository persists orders and their line-item snapshots. The backing
// store only offers single-table transactionality, which is why the saga
// exists: there is no cross-table commit to lean on.
type Repository interface {
	// InsertOrder writes the order row and returns it with id and creation
	// time filled in.
	InsertOrder(ctx context.Context, o Order) (Order, error)

	// InsertItems writes the snapshots as one batch tied to orderID.
	InsertItems(ctx context.Context, orderID int, items []LineItem) error

	// ListItems returns the snapshots already persisted for orderID,
	// letting Resume skip the batch when it landed before a crash.
	ListItems(ctx context.Context, orderID int) ([]LineItem, error)

	// GetByID returns the order with its items.
	GetByID(ctx context.Context, id int) (Order, error)

	// ListByUser returns the user's orders newest-first, items included.
	ListByUser(ctx context.Context, userID int) ([]Order, error)
}

// SagaRepository persists placement progress.
type SagaRepository interface {
	Create(ctx context.Context, rec SagaRecord) error
	SetState(ctx context.Context, orderID int, state SagaState) error
	Get(ctx context.Context, orderID int) (SagaRecord, error)
	// FindOrderIDByKey resolves an idempotency key to the order it already
	// created, if any.
	FindOrderIDByKey(ctx context.Context, key string) (int, bool, error)
}
