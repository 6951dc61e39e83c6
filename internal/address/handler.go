package address

import (
	"github.com/gofiber/fiber/v2"
	"github.com/naruebet87/local-market-backend/internal/user"
)

// Handler delegates address operations to the address service.

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/address", h.getAddresses)
	app.Post("/api/v1/address", h.addAddress)
	app.Patch("/api/v1/address", h.updateAddress)
	app.Delete("/api/v1/address", h.deleteAddress)
}

func (h *Handler) getAddresses(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	addrs, err := h.service.GetAddresses(userID)
	if err != nil {
		switch err {
		case ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "address not found"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}

	return c.JSON(addrs)
}

type addressCreateRequest struct {
	AddressDesc string `json:"addressDesc"`
	Phone       string `json:"phone"`
	AddressName string `json:"addressName"`
}

type addressUpdateRequest struct {
	AddressID   int    `json:"addressId"`
	AddressDesc string `json:"addressDesc"`
	Phone       string `json:"phone"`
	AddressName string `json:"addressName"`
}

type addressDeleteRequest struct {
	AddressID int `json:"addressId"`
}

func (h *Handler) addAddress(c *fiber.Ctx) error {
	payload := new(addressCreateRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.AddressDesc == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "addressDesc required"})
	}
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	addr, err := h.service.AddAddress(userID, payload.AddressDesc, payload.Phone, payload.AddressName)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(addr)
}

func (h *Handler) updateAddress(c *fiber.Ctx) error {
	payload := new(addressUpdateRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	addr, err := h.service.UpdateAddress(userID, payload.AddressID, payload.AddressDesc, payload.Phone, payload.AddressName)
	if err != nil {
		switch err {
		case ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "address not found"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}

	return c.JSON(addr)
}

func (h *Handler) deleteAddress(c *fiber.Ctx) error {
	payload := new(addressDeleteRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	if err := h.service.DeleteAddress(userID, payload.AddressID); err != nil {
		switch err {
		case ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "address not found"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}

	return c.SendStatus(fiber.StatusNoContent)
}
