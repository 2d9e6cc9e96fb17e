package order

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("order not found")

	// ErrDuplicateIdempotencyKey means another placement claimed the key
	// between the dedupe check and the saga-record insert.
	ErrDuplicateIdempotencyKey = errors.New("idempotency key already used")
)

// SagaStep names the dependent remote write that failed.
type SagaStep string

const (
	StepOrder     SagaStep = "create_order"
	StepItems     SagaStep = "persist_items"
	StepClearCart SagaStep = "clear_cart"
)

// PartialSagaError reports a placement that created an order but did not
// finish. It always carries the created order id so the caller can resume
// the remaining steps instead of re-running the whole saga.
//
// StepItems means the order exists with no line items (needs reconciling);
// StepClearCart means the order is fully valid and only the cart clear must
// be retried; callers treat that one as non-fatal to order success.
type PartialSagaError struct {
	OrderID int
	Step    SagaStep
	Err     error
}

func (e *PartialSagaError) Error() string {
	return fmt.Sprintf("order %d: saga step %s failed: %v", e.OrderID, e.Step, e.Err)
}

func (e *PartialSagaError) Unwrap() error { return e.Err }
