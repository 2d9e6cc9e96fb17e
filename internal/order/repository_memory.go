package order

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu         sync.Mutex
	orders     []Order
	items      map[int][]LineItem
	nextOrder  int
	nextItemID int
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		items:      make(map[int][]LineItem),
		nextOrder:  1,
		nextItemID: 1,
	}
}

func (r *InMemoryRepository) InsertOrder(ctx context.Context, o Order) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o.ID = r.nextOrder
	r.nextOrder++
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	o.Items = nil
	r.orders = append(r.orders, o)
	return o, nil
}

func (r *InMemoryRepository) InsertItems(ctx context.Context, orderID int, items []LineItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, it := range items {
		it.ID = r.nextItemID
		r.nextItemID++
		it.OrderID = orderID
		r.items[orderID] = append(r.items[orderID], it)
	}
	return nil
}

func (r *InMemoryRepository) ListItems(ctx context.Context, orderID int) ([]LineItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]LineItem(nil), r.items[orderID]...), nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id int) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, o := range r.orders {
		if o.ID == id {
			o.Items = append([]LineItem(nil), r.items[id]...)
			return o, nil
		}
	}
	return Order{}, ErrNotFound
}

func (r *InMemoryRepository) ListByUser(ctx context.Context, userID int) ([]Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Order, 0)
	for _, o := range r.orders {
		if o.UserID == userID {
			o.Items = append([]LineItem(nil), r.items[o.ID]...)
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// InMemorySagaRepository keeps saga records in memory for tests.
type InMemorySagaRepository struct {
	mu   sync.Mutex
	recs map[int]SagaRecord
}

func NewInMemorySagaRepository() *InMemorySagaRepository {
	return &InMemorySagaRepository{recs: make(map[int]SagaRecord)}
}

func (r *InMemorySagaRepository) Create(ctx context.Context, rec SagaRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec.IdempotencyKey != "" {
		for _, existing := range r.recs {
			if existing.IdempotencyKey == rec.IdempotencyKey {
				return ErrDuplicateIdempotencyKey
			}
		}
	}

	rec.UpdatedAt = time.Now().UTC()
	r.recs[rec.OrderID] = rec
	return nil
}

func (r *InMemorySagaRepository) SetState(ctx context.Context, orderID int, state SagaState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.recs[orderID]
	if !ok {
		return ErrNotFound
	}
	rec.State = state
	rec.UpdatedAt = time.Now().UTC()
	r.recs[orderID] = rec
	return nil
}

func (r *InMemorySagaRepository) Get(ctx context.Context, orderID int) (SagaRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.recs[orderID]
	if !ok {
		return SagaRecord{}, ErrNotFound
	}
	return rec, nil
}

func (r *InMemorySagaRepository) FindOrderIDByKey(ctx context.Context, key string) (int, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if key == "" {
		return 0, false, nil
	}
	for id, rec := range r.recs {
		if rec.IdempotencyKey == key {
			return id, true, nil
		}
	}
	return 0, false, nil
}
