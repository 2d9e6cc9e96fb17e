package order

import (
	"time"

	"github.com/merakit/storefront-backend/internal/address"
)

// Order statuses follow the fulfillment lifecycle. This core only ever
// writes StatusPending; later transitions belong to fulfillment tooling.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

// Payment statuses. The core records payments as paid without a gateway
// call; verification is out of scope.
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

// Order is created once per successful saga run and never deleted here.
// Addresses are embedded snapshots, not references.
type Order struct {
	ID              int             `json:"id"`
	OrderNumber     string          `json:"orderNumber"`
	UserID          int             `json:"userId"`
	Status          string          `json:"status"`
	Subtotal        float64         `json:"subtotal"`
	Tax             float64         `json:"tax"`
	Shipping        float64         `json:"shipping"`
	Total           float64         `json:"total"`
	ShippingAddress address.Address `json:"shippingAddress"`
	BillingAddress  address.Address `json:"billingAddress"`
	PaymentStatus   string          `json:"paymentStatus"`
	PaymentMethod   string          `json:"paymentMethod"`
	CreatedAt       time.Time       `json:"createdAt"`
	Items           []LineItem      `json:"items,omitempty"`
}

// LineItem is a denormalized snapshot of a cart line at order time, so later
// catalog edits never retroactively alter a placed order.
type LineItem struct {
	ID           int     `json:"id"`
	OrderID      int     `json:"orderId"`
	ProductID    int     `json:"productId"`
	VendorID     int     `json:"vendorId"`
	ProductName  string  `json:"productName"`
	ProductImage string  `json:"productImage"`
	Quantity     int     `json:"quantity"`
	Price        float64 `json:"price"`
	Subtotal     float64 `json:"subtotal"`
	Status       string  `json:"status"`
}

// SagaState tracks how far an order placement progressed. Each transition is
// idempotent so a placement interrupted mid-way can be resumed from the
// persisted record, skipping completed steps.
type SagaState string

const (
	SagaCreated        SagaState = "created"
	SagaItemsPersisted SagaState = "items_persisted"
	SagaCartCleared    SagaState = "cart_cleared"
)

// IsTerminal reports whether the saga has nothing left to do.
func (s SagaState) IsTerminal() bool {
	return s == SagaCartCleared
}

// SagaRecord is the persisted progress row backing Resume and the
// idempotency-key dedupe.
type SagaRecord struct {
	OrderID        int
	IdempotencyKey string
	State          SagaState
	UpdatedAt      time.Time
}
