package cart

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/merakit/storefront-backend/internal/domain"
	"github.com/merakit/storefront-backend/internal/pricing"
	"github.com/merakit/storefront-backend/internal/product"
	"github.com/merakit/storefront-backend/internal/user"
)

// Handler exposes the cart over HTTP. It only translates payloads and picks
// status codes; all cart semantics live in the Reconciler.
type Handler struct {
	reconciler *Reconciler
}

func NewHandler(rec *Reconciler) *Handler {
	return &Handler{reconciler: rec}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/cart", h.getCart)
	app.Post("/api/v1/cart", h.addToCart)
	app.Patch("/api/v1/cart/:id<[0-9]+>", h.updateCartItem)
	app.Delete("/api/v1/cart/:id<[0-9]+>", h.removeFromCart)
	app.Delete("/api/v1/cart", h.clearCart)
}

type cartResponse struct {
	Items  []LineItem     `json:"items"`
	Totals pricing.Totals `json:"totals"`
}

type addToCartRequest struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

type updateCartRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	items, err := h.reconciler.FetchCart(c.Context(), userID)
	if err != nil {
		return errorStatus(c, err)
	}
	return c.JSON(cartResponse{Items: items, Totals: pricing.ComputeTotals(PricingLines(items))})
}

func (h *Handler) addToCart(c *fiber.Ctx) error {
	payload := new(addToCartRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.ProductID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid productId"})
	}
	if payload.Quantity == 0 {
		payload.Quantity = 1
	}

	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	item, err := h.reconciler.AddToCart(c.Context(), userID, payload.ProductID, payload.Quantity)
	if err != nil {
		return errorStatus(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(item)
}

func (h *Handler) updateCartItem(c *fiber.Ctx) error {
	itemID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid item id"})
	}

	payload := new(updateCartRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	item, err := h.reconciler.UpdateCartItem(c.Context(), userID, itemID, payload.Quantity)
	if err != nil {
		return errorStatus(c, err)
	}
	if payload.Quantity <= 0 {
		// row removed rather than left at zero
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(item)
}

func (h *Handler) removeFromCart(c *fiber.Ctx) error {
	itemID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid item id"})
	}

	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	if err := h.reconciler.RemoveFromCart(c.Context(), userID, itemID); err != nil {
		return errorStatus(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) clearCart(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	if err := h.reconciler.ClearCart(c.Context(), userID); err != nil {
		return errorStatus(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// errorStatus maps the error taxonomy onto HTTP statuses; display policy
// belongs here, not in the services.
func errorStatus(c *fiber.Ctx, err error) error {
	var validation *domain.ValidationError
	switch {
	case errors.As(err, &validation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": validation.Error()})
	case errors.Is(err, ErrItemNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "cart item not found"})
	case errors.Is(err, product.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
	default:
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": err.Error()})
	}
}
