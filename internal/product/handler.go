package product

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/naruebet87/local-market-backend/internal/shop"
	"github.com/naruebet87/local-market-backend/internal/user"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/product/:id<[0-9]+>", h.getProduct)
	app.Get("/api/v1/shop/:id<[0-9]+>/products", h.listByShop)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/products", h.createProduct)
	app.Patch("/api/v1/product/:id<[0-9]+>", h.updateProduct)
	app.Delete("/api/v1/product/:id<[0-9]+>", h.deleteProduct)
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}

	p, err := h.service.GetByID(id)
	if err != nil {
		switch err {
		case ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}

	return c.JSON(p)
}

func (h *Handler) listByShop(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}

	products, err := h.service.ListByShop(id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	return c.JSON(products)
}

type productRequest struct {
	ShopID      int     `json:"shopId"`
	ProductName string  `json:"productName"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Description string  `json:"description"`
	ProductImg  *string `json:"productImg"`
}

func (h *Handler) createProduct(c *fiber.Ctx) error {
	shopkeeperID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	if role, err := user.GetRoleFromCtx(c); err != nil || role != user.RoleShopkeeper {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "shopkeepers only"})
	}

	payload := new(productRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.ProductName == "" || payload.ShopID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "shopId and productName required"})
	}

	created, err := h.service.Create(shopkeeperID, Product{
		ShopID:      payload.ShopID,
		ProductName: payload.ProductName,
		Price:       payload.Price,
		Stock:       payload.Stock,
		Description: payload.Description,
		ProductImg:  payload.ProductImg,
	})
	if err != nil {
		return h.mapServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) updateProduct(c *fiber.Ctx) error {
	shopkeeperID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}

	payload := struct {
		ProductName string  `json:"productName"`
		Price       float64 `json:"price"`
		Stock       int     `json:"stock"`
		Description string  `json:"description"`
		ProductImg  *string `json:"productImg"`
	}{Price: -1, Stock: -1} // negative means "leave unchanged"
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	updated, err := h.service.Update(shopkeeperID, id, Product{
		ProductName: payload.ProductName,
		Price:       payload.Price,
		Stock:       payload.Stock,
		Description: payload.Description,
		ProductImg:  payload.ProductImg,
	})
	if err != nil {
		return h.mapServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *Handler) deleteProduct(c *fiber.Ctx) error {
	shopkeeperID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}

	if err := h.service.Delete(shopkeeperID, id); err != nil {
		return h.mapServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) mapServiceError(c *fiber.Ctx, err error) error {
	switch err {
	case ErrNotFound:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
	case shop.ErrNotFound:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "shop not found"})
	case ErrNotOwner:
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "not your shop"})
	case ErrInvalidPrice, ErrInvalidStock:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
}
