package address

import (
	"github.com/go-playground/validator/v10"

	"github.com/merakit/storefront-backend/internal/domain"
)

// Address is the shipping/billing shape the storefront collects at checkout.
// Orders store it as a JSON snapshot, never as a foreign key, so edits to a
// saved address cannot rewrite the destination of a placed order.
type Address struct {
	FullName string `json:"fullName" validate:"required"`
	Address  string `json:"address" validate:"required"`
	City     string `json:"city" validate:"required"`
	State    string `json:"state" validate:"required"`
	ZipCode  string `json:"zipCode" validate:"required"`
	Country  string `json:"country" validate:"required"`
}

// Saved is an address a user stored for checkout pre-fill.
type Saved struct {
	ID      int     `json:"addressId"`
	UserID  int     `json:"userId"`
	Address Address `json:"address"`
}

var validate = validator.New()

// Validate checks the required fields and reports the first missing one as a
// ValidationError, before any remote call is made.
func Validate(a Address) error {
	err := validate.Struct(a)
	if err == nil {
		return nil
	}
	if fields, ok := err.(validator.ValidationErrors); ok && len(fields) > 0 {
		return domain.NewValidationError(fields[0].Field(), "is required")
	}
	return domain.NewValidationError("", err.Error())
}
