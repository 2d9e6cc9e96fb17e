package order

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merakit/storefront-backend/internal/address"
	"github.com/merakit/storefront-backend/internal/cart"
	"github.com/merakit/storefront-backend/internal/domain"
	"github.com/merakit/storefront-backend/internal/product"
)

func testAddress() address.Address {
	return address.Address{
		FullName: "Dana Whitfield",
		Address:  "12 Alder Row",
		City:     "Portland",
		State:    "OR",
		ZipCode:  "97205",
		Country:  "USA",
	}
}

type sagaFixture struct {
	saga       *Saga
	reconciler *cart.Reconciler
	orders     *InMemoryRepository
	sagas      *InMemorySagaRepository
	catalog    *product.InMemoryRepository
}

func newSagaFixture(t *testing.T) *sagaFixture {
	t.Helper()

	products := product.NewInMemoryRepository([]product.Product{
		{ID: 1, VendorID: 10, Name: "Walnut Desk Organizer", Price: 20.00, ImageURL: "/img/organizer.png", Status: product.StatusActive},
		{ID: 2, VendorID: 11, Name: "Ceramic Mug", Price: 15.00, ImageURL: "/img/mug.png", Status: product.StatusActive},
	})
	reconciler := cart.NewReconciler(cart.NewInMemoryRepository(products), nil)
	orders := NewInMemoryRepository()
	sagas := NewInMemorySagaRepository()

	return &sagaFixture{
		saga:       NewSaga(orders, sagas, reconciler, products, nil),
		reconciler: reconciler,
		orders:     orders,
		sagas:      sagas,
		catalog:    products,
	}
}

// fillCart seeds the fixture cart: 2 × 20.00 and 1 × 15.00.
func (f *sagaFixture) fillCart(t *testing.T, userID int) []cart.LineItem {
	t.Helper()
	ctx := context.Background()

	_, err := f.reconciler.AddToCart(ctx, userID, 1, 2)
	require.NoError(t, err)
	_, err = f.reconciler.AddToCart(ctx, userID, 2, 1)
	require.NoError(t, err)

	items, err := f.reconciler.FetchCart(ctx, userID)
	require.NoError(t, err)
	return items
}

func TestPlaceOrder_HappyPath(t *testing.T) {
	ctx := context.Background()
	f := newSagaFixture(t)
	items := f.fillCart(t, 42)

	ord, err := f.saga.PlaceOrder(ctx, PlaceOrderInput{
		UserID:          42,
		Items:           items,
		ShippingAddress: testAddress(),
		BillingAddress:  testAddress(),
		PaymentMethod:   "credit_card",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusPending, ord.Status)
	assert.Equal(t, PaymentPaid, ord.PaymentStatus)
	assert.Contains(t, ord.OrderNumber, "ORD-")
	assert.Equal(t, 55.00, ord.Subtotal)
	assert.Equal(t, 5.50, ord.Tax)
	assert.Equal(t, 10.00, ord.Shipping)
	assert.Equal(t, 70.50, ord.Total)
	assert.Equal(t, ord.Total, ord.Subtotal+ord.Tax+ord.Shipping)

	// one snapshot per cart line, prices and subtotals intact
	require.Len(t, ord.Items, 2)
	var sum float64
	for i, it := range ord.Items {
		assert.Equal(t, items[i].ProductID, it.ProductID)
		assert.Equal(t, items[i].Quantity, it.Quantity)
		assert.Equal(t, it.Price*float64(it.Quantity), it.Subtotal)
		assert.Equal(t, items[i].Product.VendorID, it.VendorID)
		assert.Equal(t, items[i].Product.Name, it.ProductName)
		sum += it.Subtotal
	}
	assert.Equal(t, ord.Subtotal, sum)

	// cart cleared and saga terminal
	remaining, err := f.reconciler.FetchCart(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	rec, err := f.sagas.Get(ctx, ord.ID)
	require.NoError(t, err)
	assert.True(t, rec.State.IsTerminal())
}

func TestPlaceOrder_EmptyCartRejected(t *testing.T) {
	f := newSagaFixture(t)

	_, err := f.saga.PlaceOrder(context.Background(), PlaceOrderInput{
		UserID:          42,
		ShippingAddress: testAddress(),
		BillingAddress:  testAddress(),
		PaymentMethod:   "credit_card",
	})
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "items", validation.Field)
}

func TestPlaceOrder_MissingAddressFieldRejected(t *testing.T) {
	f := newSagaFixture(t)
	items := f.fillCart(t, 42)

	bad := testAddress()
	bad.ZipCode = ""

	_, err := f.saga.PlaceOrder(context.Background(), PlaceOrderInput{
		UserID:          42,
		Items:           items,
		ShippingAddress: bad,
		BillingAddress:  testAddress(),
		PaymentMethod:   "credit_card",
	})
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)

	// rejected before any remote write
	assert.Empty(t, f.orders.orders)
}

func TestPlaceOrder_RepricesFromLiveCatalog(t *testing.T) {
	ctx := context.Background()
	f := newSagaFixture(t)
	items := f.fillCart(t, 42)

	// a replayed checkout carrying a stale snapshot price
	items[0].Product.Price = 0.01

	ord, err := f.saga.PlaceOrder(ctx, PlaceOrderInput{
		UserID:          42,
		Items:           items,
		ShippingAddress: testAddress(),
		BillingAddress:  testAddress(),
		PaymentMethod:   "credit_card",
	})
	require.NoError(t, err)

	assert.Equal(t, 55.00, ord.Subtotal, "catalog price wins over the stale snapshot")
	require.Len(t, ord.Items, 2)
	assert.Equal(t, 20.00, ord.Items[0].Price)
}

func TestPlaceOrder_VanishedProductRejected(t *testing.T) {
	f := newSagaFixture(t)
	items := f.fillCart(t, 42)

	items = append(items, cart.LineItem{
		ProductID: 999,
		Quantity:  1,
		Product:   product.Product{ID: 999, Price: 5.00},
	})

	_, err := f.saga.PlaceOrder(context.Background(), PlaceOrderInput{
		UserID:          42,
		Items:           items,
		ShippingAddress: testAddress(),
		BillingAddress:  testAddress(),
		PaymentMethod:   "credit_card",
	})
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "productId", validation.Field)
	assert.Empty(t, f.orders.orders, "nothing persisted for an unpriceable cart")
}

func TestPlaceOrder_ItemsFailureLeavesCartIntact(t *testing.T) {
	ctx := context.Background()
	f := newSagaFixture(t)
	items := f.fillCart(t, 42)

	failing := &failingItemsRepo{InMemoryRepository: f.orders, err: errors.New("connection reset")}
	saga := NewSaga(failing, f.sagas, f.reconciler, f.catalog, nil)

	_, err := saga.PlaceOrder(ctx, PlaceOrderInput{
		UserID:          42,
		Items:           items,
		ShippingAddress: testAddress(),
		BillingAddress:  testAddress(),
		PaymentMethod:   "credit_card",
	})

	var partial *PartialSagaError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, StepItems, partial.Step)
	assert.NotZero(t, partial.OrderID, "partial error must carry the orphaned order id")

	// no cart row was deleted
	remaining, err2 := f.reconciler.FetchCart(ctx, 42)
	require.NoError(t, err2)
	assert.Len(t, remaining, 2)

	// the orphaned order persists for reconciliation
	orphan, err2 := f.orders.GetByID(ctx, partial.OrderID)
	require.NoError(t, err2)
	assert.Empty(t, orphan.Items)
}

func TestPlaceOrder_ClearFailureStillReturnsOrder(t *testing.T) {
	ctx := context.Background()
	f := newSagaFixture(t)
	items := f.fillCart(t, 42)

	saga := NewSaga(f.orders, f.sagas, failingGateway{err: errors.New("timeout")}, f.catalog, nil)

	ord, err := saga.PlaceOrder(ctx, PlaceOrderInput{
		UserID:          42,
		Items:           items,
		ShippingAddress: testAddress(),
		BillingAddress:  testAddress(),
		PaymentMethod:   "credit_card",
	})

	var partial *PartialSagaError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, StepClearCart, partial.Step)

	// the order itself is fully valid
	assert.NotZero(t, ord.ID)
	require.Len(t, ord.Items, 2)

	rec, err2 := f.sagas.Get(ctx, ord.ID)
	require.NoError(t, err2)
	assert.Equal(t, SagaItemsPersisted, rec.State)
}

func TestPlaceOrder_IdempotencyKeyDedupes(t *testing.T) {
	ctx := context.Background()
	f := newSagaFixture(t)
	items := f.fillCart(t, 42)

	in := PlaceOrderInput{
		UserID:          42,
		Items:           items,
		ShippingAddress: testAddress(),
		BillingAddress:  testAddress(),
		PaymentMethod:   "credit_card",
		IdempotencyKey:  "ck-1db6",
	}

	first, err := f.saga.PlaceOrder(ctx, in)
	require.NoError(t, err)

	// resubmit after a timeout of unknown outcome
	second, err := f.saga.PlaceOrder(ctx, in)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, f.orders.orders, 1, "no duplicate order row")
}

func TestPlaceOrder_ConcurrentDuplicateKeyDefersToWinner(t *testing.T) {
	ctx := context.Background()
	f := newSagaFixture(t)
	items := f.fillCart(t, 42)

	in := PlaceOrderInput{
		UserID:          42,
		Items:           items,
		ShippingAddress: testAddress(),
		BillingAddress:  testAddress(),
		PaymentMethod:   "credit_card",
		IdempotencyKey:  "ck-9f21",
	}

	winner, err := f.saga.PlaceOrder(ctx, in)
	require.NoError(t, err)

	// the racing placement's dedupe check ran before the winner's saga
	// record landed, so it only trips over the unique key at insert time
	racing := &racingSagaRepo{InMemorySagaRepository: f.sagas, misses: 1}
	saga := NewSaga(f.orders, racing, f.reconciler, f.catalog, nil)

	in.Items = f.fillCart(t, 42)
	loser, err := saga.PlaceOrder(ctx, in)
	require.NoError(t, err)

	assert.Equal(t, winner.ID, loser.ID, "the racing placement must return the winner's order")
	require.Len(t, f.orders.orders, 2)

	// the extra row is itemless, like any StepItems orphan
	orphan, err := f.orders.GetByID(ctx, f.orders.orders[1].ID)
	require.NoError(t, err)
	assert.Empty(t, orphan.Items)
}

func TestResume_FinishesCartClear(t *testing.T) {
	ctx := context.Background()
	f := newSagaFixture(t)
	items := f.fillCart(t, 42)

	// placement that died after persisting items
	broken := NewSaga(f.orders, f.sagas, failingGateway{err: errors.New("timeout")}, f.catalog, nil)
	ord, err := broken.PlaceOrder(ctx, PlaceOrderInput{
		UserID:          42,
		Items:           items,
		ShippingAddress: testAddress(),
		BillingAddress:  testAddress(),
		PaymentMethod:   "credit_card",
	})
	var partial *PartialSagaError
	require.ErrorAs(t, err, &partial)

	resumed, err := f.saga.Resume(ctx, ord.ID)
	require.NoError(t, err)
	assert.Equal(t, ord.ID, resumed.ID)

	remaining, err := f.reconciler.FetchCart(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, remaining, "resume must finish the cart clear")

	rec, err := f.sagas.Get(ctx, ord.ID)
	require.NoError(t, err)
	assert.True(t, rec.State.IsTerminal())

	// resuming a finished saga changes nothing
	_, err = f.saga.Resume(ctx, ord.ID)
	require.NoError(t, err)
}

func TestListOrders_NewestFirst(t *testing.T) {
	ctx := context.Background()
	f := newSagaFixture(t)

	for i := 0; i < 2; i++ {
		items := f.fillCart(t, 42)
		_, err := f.saga.PlaceOrder(ctx, PlaceOrderInput{
			UserID:          42,
			Items:           items,
			ShippingAddress: testAddress(),
			BillingAddress:  testAddress(),
			PaymentMethod:   "credit_card",
		})
		require.NoError(t, err)
	}

	orders, err := f.saga.ListOrders(ctx, 42)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Greater(t, orders[0].ID, orders[1].ID)
	require.Len(t, orders[0].Items, 2)
}

// racingSagaRepo misses the first key lookups, as if the record landed after
// the caller's dedupe check.
type racingSagaRepo struct {
	*InMemorySagaRepository
	misses int
}

func (r *racingSagaRepo) FindOrderIDByKey(ctx context.Context, key string) (int, bool, error) {
	if r.misses > 0 {
		r.misses--
		return 0, false, nil
	}
	return r.InMemorySagaRepository.FindOrderIDByKey(ctx, key)
}

type failingItemsRepo struct {
	*InMemoryRepository
	err error
}

func (f *failingItemsRepo) InsertItems(context.Context, int, []LineItem) error {
	return f.err
}

type failingGateway struct {
	err error
}

func (f failingGateway) ClearCart(context.Context, int) error { return f.err }
