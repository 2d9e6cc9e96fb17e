package cart

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/merakit/storefront-backend/internal/domain"
)

// Reconciler translates cart intents into remote-store operations while
// preserving the one-row-per-product invariant, and keeps each session's
// State in step with what the store returned.
type Reconciler struct {
	repo   Repository
	logger *log.Entry

	mu       sync.Mutex
	sessions map[int]*State
}

func NewReconciler(repo Repository, logger *log.Entry) *Reconciler {
	if logger == nil {
		logger = log.New().WithField("component", "cart")
	}
	return &Reconciler{
		repo:     repo,
		logger:   logger,
		sessions: make(map[int]*State),
	}
}

// StateFor returns the session container for userID, creating it on first use.
func (r *Reconciler) StateFor(userID int) *State {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.sessions[userID]
	if !ok {
		st = NewState()
		r.sessions[userID] = st
	}
	return st
}

// AddToCart ensures the product has +quantity in the user's cart. The store
// performs the merge atomically, so two rapid adds for the same product end
// up on one row. Any remote failure wraps ErrAddToCartFailed and leaves no
// partial state behind.
func (r *Reconciler) AddToCart(ctx context.Context, userID, productID, quantity int) (LineItem, error) {
	if quantity <= 0 {
		return LineItem{}, domain.NewValidationError("quantity", "must be positive")
	}

	item, err := r.repo.Upsert(ctx, userID, productID, quantity)
	if err != nil {
		r.logger.WithFields(log.Fields{"userID": userID, "productID": productID}).
			WithError(err).Error("cart upsert failed")
		return LineItem{}, fmt.Errorf("%w: %w", ErrAddToCartFailed, err)
	}

	r.StateFor(userID).applyUpsert(item)
	return item, nil
}

// UpdateCartItem overwrites the row quantity. The row must belong to the
// user; a foreign id reads as not found. A non-positive quantity delegates
// to RemoveFromCart instead of leaving a zero-quantity row.
func (r *Reconciler) UpdateCartItem(ctx context.Context, userID, itemID, quantity int) (LineItem, error) {
	if quantity <= 0 {
		return LineItem{}, r.RemoveFromCart(ctx, userID, itemID)
	}

	item, err := r.repo.SetQuantity(ctx, userID, itemID, quantity)
	if err != nil {
		return LineItem{}, err
	}

	r.StateFor(userID).applyUpsert(item)
	return item, nil
}

// RemoveFromCart deletes the user's row. Repeating after success is a no-op,
// not an error, and a row owned by someone else is never touched.
func (r *Reconciler) RemoveFromCart(ctx context.Context, userID, itemID int) error {
	if err := r.repo.DeleteByID(ctx, userID, itemID); err != nil {
		return err
	}
	r.StateFor(userID).applyRemove(itemID)
	return nil
}

// ClearCart deletes every row the user owns and empties the session. Also
// the saga's final step, so it stays idempotent.
func (r *Reconciler) ClearCart(ctx context.Context, userID int) error {
	if err := r.repo.DeleteByUser(ctx, userID); err != nil {
		return err
	}
	r.StateFor(userID).applyClear()
	return nil
}

// FetchCart rebuilds the session wholesale from the store and returns the
// fresh snapshot.
func (r *Reconciler) FetchCart(ctx context.Context, userID int) ([]LineItem, error) {
	items, err := r.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	st := r.StateFor(userID)
	st.applyReplaceAll(items)
	return st.Items(), nil
}
