package cart

import (
	"context"
	"sync"

	"github.com/merakit/storefront-backend/internal/product"
)

// InMemoryRepository is used for tests and local scenarios. It joins product
// snapshots through the given product repository, like the SQL one does.
type InMemoryRepository struct {
	mu       sync.Mutex
	rows     []LineItem
	nextID   int
	products product.Repository
}

func NewInMemoryRepository(products product.Repository) *InMemoryRepository {
	return &InMemoryRepository{nextID: 1, products: products}
}

func (r *InMemoryRepository) Upsert(ctx context.Context, userID, productID, delta int) (LineItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.products.GetByID(ctx, productID)
	if err != nil {
		return LineItem{}, err
	}

	for i, row := range r.rows {
		if row.UserID == userID && row.ProductID == productID {
			r.rows[i].Quantity += delta
			r.rows[i].Product = p
			return r.rows[i], nil
		}
	}

	item := LineItem{ID: r.nextID, UserID: userID, ProductID: productID, Quantity: delta, Product: p}
	r.nextID++
	r.rows = append(r.rows, item)
	return item, nil
}

func (r *InMemoryRepository) SetQuantity(ctx context.Context, userID, itemID, quantity int) (LineItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, row := range r.rows {
		if row.ID == itemID && row.UserID == userID {
			r.rows[i].Quantity = quantity
			p, err := r.products.GetByID(ctx, row.ProductID)
			if err != nil {
				return LineItem{}, err
			}
			r.rows[i].Product = p
			return r.rows[i], nil
		}
	}
	return LineItem{}, ErrItemNotFound
}

func (r *InMemoryRepository) DeleteByID(ctx context.Context, userID, itemID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, row := range r.rows {
		if row.ID == itemID && row.UserID == userID {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	// absent or foreign row: removal is idempotent
	return nil
}

func (r *InMemoryRepository) DeleteByUser(ctx context.Context, userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.rows[:0]
	for _, row := range r.rows {
		if row.UserID != userID {
			kept = append(kept, row)
		}
	}
	r.rows = kept
	return nil
}

func (r *InMemoryRepository) ListByUser(ctx context.Context, userID int) ([]LineItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]LineItem, 0)
	for _, row := range r.rows {
		if row.UserID == userID {
			p, err := r.products.GetByID(ctx, row.ProductID)
			if err != nil {
				return nil, err
			}
			row.Product = p
			out = append(out, row)
		}
	}
	return out, nil
}
