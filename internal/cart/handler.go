package cart

import (
	"github.com/gofiber/fiber/v2"
	"github.com/naruebet87/local-market-backend/internal/user"
)

// Handler delegates cart operations to the cart service.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/cart", h.getCart)
	app.Post("/api/v1/cart/items", h.addToCart)
	app.Delete("/api/v1/cart", h.clearCart)
}

type cartRequest struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity,omitempty"`
}

func (h *Handler) addToCart(c *fiber.Ctx) error {
	payload := new(cartRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.ProductID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid productId"})
	}
	// negative quantities decrement; the line disappears at zero
	customerID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	updated, err := h.service.AddToCart(customerID, payload.ProductID, payload.Quantity)
	if err != nil {
		switch err {
		case ErrNotFound:
			// cart emptied out (or nothing to show); report an empty cart
			return c.JSON(Cart{CustomerID: customerID, Lines: []Line{}})
		case ErrProductNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
		case ErrShopMismatch:
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "cart already holds products from another shop"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}

	return c.Status(fiber.StatusOK).JSON(updated)
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	customerID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	cart, err := h.service.GetCart(customerID)
	if err != nil {
		switch err {
		case ErrNotFound:
			return c.JSON(Cart{CustomerID: customerID, Lines: []Line{}})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}

	return c.JSON(cart)
}

func (h *Handler) clearCart(c *fiber.Ctx) error {
	customerID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	if err := h.service.ClearCart(customerID); err != nil && err != ErrNotFound {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
