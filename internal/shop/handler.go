package shop

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/naruebet87/local-market-backend/internal/user"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/shop/:id<[0-9]+>", h.getShop)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/shops", h.getOwnShops)
	app.Post("/api/v1/shops", h.createShop)
	app.Patch("/api/v1/shop/:id<[0-9]+>", h.updateShop)
}

func (h *Handler) getShop(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}

	shop, err := h.service.GetByID(id)
	if err != nil {
		switch err {
		case ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "shop not found"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}

	return c.JSON(shop)
}

func (h *Handler) getOwnShops(c *fiber.Ctx) error {
	shopkeeperID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	shops, err := h.service.ListByShopkeeper(shopkeeperID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	return c.JSON(shops)
}

type shopRequest struct {
	ShopName  string  `json:"shopName"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (h *Handler) createShop(c *fiber.Ctx) error {
	shopkeeperID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	if role, err := user.GetRoleFromCtx(c); err != nil || role != user.RoleShopkeeper {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "shopkeepers only"})
	}

	payload := new(shopRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.ShopName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "shopName required"})
	}

	created, err := h.service.Create(shopkeeperID, payload.ShopName, payload.Latitude, payload.Longitude)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) updateShop(c *fiber.Ctx) error {
	shopkeeperID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}

	payload := new(shopRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	updated, err := h.service.Update(shopkeeperID, id, Shop{
		ShopName:  payload.ShopName,
		Latitude:  payload.Latitude,
		Longitude: payload.Longitude,
	})
	if err != nil {
		switch err {
		case ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "shop not found"})
		case ErrNotOwner:
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "not your shop"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}

	return c.JSON(updated)
}
