package cart

import "sync"

// State is the per-session ordered collection of line items, the single
// source of truth between fetches. Only the Reconciler and the
// order saga mutate it; everything else reads copies via Items.
type State struct {
	mu    sync.RWMutex
	items []LineItem
}

func NewState() *State {
	return &State{}
}

// Items returns a copy of the current line items in insertion order.
func (s *State) Items() []LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// Len reports how many line items the session currently holds.
func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// applyUpsert patches the item with the same row id in place, or appends it.
func (s *State) applyUpsert(item LineItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.items {
		if existing.ID == item.ID {
			s.items[i] = item
			return
		}
	}
	s.items = append(s.items, item)
}

// applyRemove drops the item with the given row id, if present.
func (s *State) applyRemove(itemID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.items {
		if existing.ID == itemID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

// applyClear empties the session.
func (s *State) applyClear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = s.items[:0]
}

// applyReplaceAll rebuilds the session wholesale from a fresh fetch.
func (s *State) applyReplaceAll(items []LineItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make([]LineItem, len(items))
	copy(s.items, items)
}
