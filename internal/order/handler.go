package order

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/merakit/storefront-backend/internal/address"
	"github.com/merakit/storefront-backend/internal/cart"
	"github.com/merakit/storefront-backend/internal/domain"
	"github.com/merakit/storefront-backend/internal/user"
)

// Handler exposes checkout over HTTP. Items are read server-side from the
// user's cart rather than trusted from the request body.
type Handler struct {
	saga       *Saga
	reconciler *cart.Reconciler
}

func NewHandler(saga *Saga, rec *cart.Reconciler) *Handler {
	return &Handler{saga: saga, reconciler: rec}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/orders", h.placeOrder)
	app.Get("/api/v1/orders", h.getOrders)
	app.Post("/api/v1/orders/:id<[0-9]+>/resume", h.resumeOrder)
}

type placeOrderRequest struct {
	ShippingAddress address.Address `json:"shippingAddress"`
	BillingAddress  address.Address `json:"billingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	IdempotencyKey  string          `json:"idempotencyKey,omitempty"`
}

type placeOrderResponse struct {
	Order   Order  `json:"order"`
	Warning string `json:"warning,omitempty"`
}

func (h *Handler) placeOrder(c *fiber.Ctx) error {
	payload := new(placeOrderRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	items, err := h.reconciler.FetchCart(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": err.Error()})
	}

	ord, err := h.saga.PlaceOrder(c.Context(), PlaceOrderInput{
		UserID:          userID,
		Items:           items,
		ShippingAddress: payload.ShippingAddress,
		BillingAddress:  payload.BillingAddress,
		PaymentMethod:   payload.PaymentMethod,
		IdempotencyKey:  payload.IdempotencyKey,
	})
	if err != nil {
		return h.placementError(c, ord, err)
	}
	return c.Status(fiber.StatusCreated).JSON(placeOrderResponse{Order: ord})
}

// placementError maps the saga's error taxonomy onto responses. A failed
// cart clear is not fatal: the order exists, so the client gets it back with
// a warning instead of an error status.
func (h *Handler) placementError(c *fiber.Ctx, ord Order, err error) error {
	var validation *domain.ValidationError
	if errors.As(err, &validation) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": validation.Error()})
	}

	var partial *PartialSagaError
	if errors.As(err, &partial) {
		if partial.Step == StepClearCart {
			return c.Status(fiber.StatusCreated).JSON(placeOrderResponse{
				Order:   ord,
				Warning: "order placed but cart was not cleared; it will be retried",
			})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"message": "order was created but its items could not be saved",
			"orderId": partial.OrderID,
		})
	}

	return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": err.Error()})
}

func (h *Handler) getOrders(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	orders, err := h.saga.ListOrders(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(orders)
}

func (h *Handler) resumeOrder(c *fiber.Ctx) error {
	orderID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid order id"})
	}

	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	ord, err := h.saga.GetOrder(c.Context(), orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "order not found"})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": err.Error()})
	}
	if ord.UserID != userID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "order not found"})
	}

	ord, err = h.saga.Resume(c.Context(), orderID)
	if err != nil {
		return h.placementError(c, ord, err)
	}
	return c.JSON(placeOrderResponse{Order: ord})
}
