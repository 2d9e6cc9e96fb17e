package address

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/merakit/storefront-backend/internal/domain"
	"github.com/merakit/storefront-backend/internal/user"
)

// Handler serves saved-address reads and writes for checkout pre-fill.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/addresses", h.listAddresses)
	app.Post("/api/v1/addresses", h.createAddress)
}

func (h *Handler) listAddresses(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	saved, err := h.service.ListByUser(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(saved)
}

func (h *Handler) createAddress(c *fiber.Ctx) error {
	payload := new(Address)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	saved, err := h.service.Create(c.Context(), userID, *payload)
	if err != nil {
		var validation *domain.ValidationError
		if errors.As(err, &validation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": validation.Error()})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(saved)
}
