package address

import (
	"context"
	"sync"
)

// Repository stores saved checkout addresses.
type Repository interface {
	ListByUser(ctx context.Context, userID int) ([]Saved, error)
	Create(ctx context.Context, userID int, a Address) (Saved, error)
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu     sync.Mutex
	rows   []Saved
	nextID int
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{nextID: 1}
}

func (r *InMemoryRepository) ListByUser(ctx context.Context, userID int) ([]Saved, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Saved, 0)
	for _, s := range r.rows {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) Create(ctx context.Context, userID int, a Address) (Saved, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Saved{ID: r.nextID, UserID: userID, Address: a}
	r.nextID++
	r.rows = append(r.rows, s)
	return s, nil
}
