package user

import (
	"context"
	"sync"
)

// Repository reads profiles from the identity store.
type Repository interface {
	GetByID(ctx context.Context, id int) (Profile, error)
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu       sync.RWMutex
	profiles []Profile
}

func NewInMemoryRepository(seed []Profile) *InMemoryRepository {
	return &InMemoryRepository{profiles: append([]Profile(nil), seed...)}
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id int) (Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.profiles {
		if p.ID == id {
			return p, nil
		}
	}
	return Profile{}, ErrNotFound
}
