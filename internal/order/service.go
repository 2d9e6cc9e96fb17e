package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/merakit/storefront-backend/internal/address"
	"github.com/merakit/storefront-backend/internal/cart"
	"github.com/merakit/storefront-backend/internal/domain"
	"github.com/merakit/storefront-backend/internal/pricing"
	"github.com/merakit/storefront-backend/internal/product"
)

// CartGateway is the slice of the cart reconciler the saga needs for its
// final step. Clearing through the reconciler keeps the session container in
// step with the deleted rows.
type CartGateway interface {
	ClearCart(ctx context.Context, userID int) error
}

// CatalogGateway batch-resolves live product snapshots so checkout prices
// what the catalog says now, not what a session cached.
type CatalogGateway interface {
	ListByIDs(ctx context.Context, ids []int) ([]product.Product, error)
}

// Saga commits a cart as a durable order plus per-item snapshots, then
// clears the cart. The three writes have no cross-step atomicity, so
// progress is persisted per step and every transition is idempotent.
type Saga struct {
	orders  Repository
	sagas   SagaRepository
	carts   CartGateway
	catalog CatalogGateway
	logger  *log.Entry
	now     func() time.Time
}

func NewSaga(orders Repository, sagas SagaRepository, carts CartGateway, catalog CatalogGateway, logger *log.Entry) *Saga {
	if logger == nil {
		logger = log.New().WithField("component", "order-saga")
	}
	return &Saga{
		orders:  orders,
		sagas:   sagas,
		carts:   carts,
		catalog: catalog,
		logger:  logger,
		now:     time.Now,
	}
}

// PlaceOrderInput carries everything checkout collected. IdempotencyKey is
// optional; resubmitting with the same key after a timeout of unknown
// outcome returns the already-created order instead of a duplicate.
type PlaceOrderInput struct {
	UserID          int
	Items           []cart.LineItem
	ShippingAddress address.Address
	BillingAddress  address.Address
	PaymentMethod   string
	IdempotencyKey  string
}

// PlaceOrder runs the placement saga.
//
// Failure semantics: if the order insert fails nothing is persisted and the
// caller can retry from scratch. If the item batch fails, the returned
// PartialSagaError carries the orphaned order id (StepItems). If only the
// cart clear fails, the order is still returned alongside a StepClearCart
// PartialSagaError; the order already exists and the clear can be retried
// independently via Resume.
func (s *Saga) PlaceOrder(ctx context.Context, in PlaceOrderInput) (Order, error) {
	if err := validateInput(in); err != nil {
		return Order{}, err
	}

	// a resubmitted key means this checkout already ran
	if orderID, ok, err := s.sagas.FindOrderIDByKey(ctx, in.IdempotencyKey); err != nil {
		return Order{}, err
	} else if ok {
		s.logger.WithFields(log.Fields{"orderID": orderID, "key": in.IdempotencyKey}).
			Info("duplicate placement detected, returning existing order")
		return s.orders.GetByID(ctx, orderID)
	}

	items, err := s.refreshSnapshots(ctx, in.Items)
	if err != nil {
		return Order{}, err
	}

	totals := pricing.ComputeTotals(cart.PricingLines(items))

	ord, err := s.orders.InsertOrder(ctx, Order{
		OrderNumber:     s.newOrderNumber(),
		UserID:          in.UserID,
		Status:          StatusPending,
		Subtotal:        totals.Subtotal,
		Tax:             totals.Tax,
		Shipping:        totals.Shipping,
		Total:           totals.Total,
		ShippingAddress: in.ShippingAddress,
		BillingAddress:  in.BillingAddress,
		PaymentStatus:   PaymentPaid,
		PaymentMethod:   in.PaymentMethod,
	})
	if err != nil {
		// nothing persisted; safe to retry from scratch
		return Order{}, err
	}

	if err := s.sagas.Create(ctx, SagaRecord{
		OrderID:        ord.ID,
		IdempotencyKey: in.IdempotencyKey,
		State:          SagaCreated,
	}); err != nil {
		if errors.Is(err, ErrDuplicateIdempotencyKey) {
			// a concurrent placement claimed the key after our dedupe
			// check; defer to its order and leave ours, itemless, for
			// reconciliation
			if orderID, ok, lookupErr := s.sagas.FindOrderIDByKey(ctx, in.IdempotencyKey); lookupErr == nil && ok {
				s.logger.WithFields(log.Fields{"orderID": orderID, "orphanOrderID": ord.ID, "key": in.IdempotencyKey}).
					Warn("concurrent duplicate placement, returning existing order")
				return s.orders.GetByID(ctx, orderID)
			}
		}
		// the order exists either way; losing the record only costs
		// resumability and dedupe for this one placement
		s.logger.WithField("orderID", ord.ID).WithError(err).Error("saga record insert failed")
	}

	lines := materializeItems(ord.ID, items)
	if err := s.orders.InsertItems(ctx, ord.ID, lines); err != nil {
		s.logger.WithField("orderID", ord.ID).WithError(err).Error("order items batch failed")
		return Order{}, &PartialSagaError{OrderID: ord.ID, Step: StepItems, Err: err}
	}
	s.advance(ctx, ord.ID, SagaItemsPersisted)
	ord.Items = lines

	if err := s.carts.ClearCart(ctx, in.UserID); err != nil {
		s.logger.WithField("orderID", ord.ID).WithError(err).Error("cart clear failed after placement")
		return ord, &PartialSagaError{OrderID: ord.ID, Step: StepClearCart, Err: err}
	}
	s.advance(ctx, ord.ID, SagaCartCleared)

	return ord, nil
}

// Resume finishes an interrupted placement from its persisted saga record,
// skipping steps that already completed.
func (s *Saga) Resume(ctx context.Context, orderID int) (Order, error) {
	rec, err := s.sagas.Get(ctx, orderID)
	if err != nil {
		return Order{}, err
	}

	ord, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return Order{}, err
	}

	if rec.State == SagaCreated {
		// re-check before re-inserting: the batch may have landed right
		// before the previous run died
		existing, err := s.orders.ListItems(ctx, orderID)
		if err != nil {
			return Order{}, err
		}
		if len(existing) == 0 {
			return Order{}, &PartialSagaError{OrderID: orderID, Step: StepItems,
				Err: fmt.Errorf("order has no line items to rebuild from; reconcile manually")}
		}
		ord.Items = existing
		s.advance(ctx, orderID, SagaItemsPersisted)
		rec.State = SagaItemsPersisted
	}

	if rec.State == SagaItemsPersisted {
		if err := s.carts.ClearCart(ctx, ord.UserID); err != nil {
			return ord, &PartialSagaError{OrderID: orderID, Step: StepClearCart, Err: err}
		}
		s.advance(ctx, orderID, SagaCartCleared)
	}

	return ord, nil
}

// ListOrders returns the user's orders newest-first with their items.
func (s *Saga) ListOrders(ctx context.Context, userID int) ([]Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// GetOrder returns one order with its items.
func (s *Saga) GetOrder(ctx context.Context, id int) (Order, error) {
	return s.orders.GetByID(ctx, id)
}

// advance records saga progress; a failed bookkeeping write never fails the
// placement itself.
func (s *Saga) advance(ctx context.Context, orderID int, state SagaState) {
	if err := s.sagas.SetState(ctx, orderID, state); err != nil {
		s.logger.WithFields(log.Fields{"orderID": orderID, "state": state}).
			WithError(err).Error("saga state update failed")
	}
}

// newOrderNumber derives a unique, time-ordered order number. The random
// suffix keeps two placements in the same millisecond distinct.
func (s *Saga) newOrderNumber() string {
	return fmt.Sprintf("ORD-%d-%s", s.now().UnixMilli(), uuid.NewString()[:8])
}

// refreshSnapshots re-reads every product in one catalog batch and swaps the
// fresh snapshot into each line, so stale session prices never price an
// order. A product that vanished from the catalog fails the placement.
func (s *Saga) refreshSnapshots(ctx context.Context, items []cart.LineItem) ([]cart.LineItem, error) {
	ids := make([]int, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}

	fresh, err := s.catalog.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int]product.Product, len(fresh))
	for _, p := range fresh {
		byID[p.ID] = p
	}

	out := make([]cart.LineItem, 0, len(items))
	for _, it := range items {
		p, ok := byID[it.ProductID]
		if !ok {
			return nil, domain.NewValidationError("productId", "is no longer available")
		}
		it.Product = p
		out = append(out, it)
	}
	return out, nil
}

func validateInput(in PlaceOrderInput) error {
	if len(in.Items) == 0 {
		return domain.NewValidationError("items", "cart is empty")
	}
	for _, it := range in.Items {
		if it.Quantity < 1 {
			return domain.NewValidationError("quantity", "must be at least 1")
		}
		if it.Product.Price < 0 {
			return domain.NewValidationError("price", "must be non-negative")
		}
	}
	if in.PaymentMethod == "" {
		return domain.NewValidationError("paymentMethod", "is required")
	}
	if err := address.Validate(in.ShippingAddress); err != nil {
		return err
	}
	return address.Validate(in.BillingAddress)
}

// materializeItems snapshots each cart line into an order line item.
func materializeItems(orderID int, items []cart.LineItem) []LineItem {
	out := make([]LineItem, 0, len(items))
	for _, it := range items {
		out = append(out, LineItem{
			OrderID:      orderID,
			ProductID:    it.ProductID,
			VendorID:     it.Product.VendorID,
			ProductName:  it.Product.Name,
			ProductImage: it.Product.ImageURL,
			Quantity:     it.Quantity,
			Price:        it.Product.Price,
			Subtotal:     it.Product.Price * float64(it.Quantity),
			Status:       StatusPending,
		})
	}
	return out
}
