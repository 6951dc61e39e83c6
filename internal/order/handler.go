package order

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/naruebet87/local-market-backend/internal/user"
)

// Handler exposes the fulfillment operations over HTTP. Identity and role
// come from the JWT; the handler never second-guesses them.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/checkout", h.checkout)
	app.Get("/api/v1/orders", h.getOrders)
	app.Get("/api/v1/order/:id<[0-9]+>", h.getOrder)
	app.Patch("/api/v1/order/:id<[0-9]+>/status", h.updateStatus)
	app.Post("/api/v1/order/:id<[0-9]+>/assign", h.assignAgent)
}

func (h *Handler) checkout(c *fiber.Ctx) error {
	customerID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	created, err := h.service.Checkout(customerID)
	if err != nil {
		var stockErr *InsufficientStockError
		switch {
		case errors.As(err, &stockErr):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": stockErr.Error(),
				"detail":  stockErr,
			})
		case err == ErrEmptyCart:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "cart is empty"})
		case err == ErrShopNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "shop no longer exists"})
		case err == ErrAddressMissing:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "no delivery address on file"})
		case err == user.ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "user not found"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) getOrders(c *fiber.Ctx) error {
	actorID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	role, err := user.GetRoleFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	orders, err := h.service.ListFor(actorID, role)
	if err != nil {
		if err == ErrForbidden {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "forbidden"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	return c.JSON(orders)
}

func (h *Handler) getOrder(c *fiber.Ctx) error {
	actorID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	role, err := user.GetRoleFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}

	o, err := h.service.GetFor(actorID, role, id)
	if err != nil {
		switch err {
		case ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "order not found"})
		case ErrForbidden:
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "forbidden"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}

	return c.JSON(o)
}

type statusRequest struct {
	Action string `json:"action"`
}

func (h *Handler) updateStatus(c *fiber.Ctx) error {
	actorID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	role, err := user.GetRoleFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}

	payload := new(statusRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.Action == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "action required"})
	}

	updated, err := h.service.UpdateStatus(actorID, role, id, Action(payload.Action))
	if err != nil {
		return h.mapStatusError(c, err)
	}

	return c.JSON(updated)
}

type assignRequest struct {
	AgentID int `json:"agentId"`
}

func (h *Handler) assignAgent(c *fiber.Ctx) error {
	shopkeeperID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	if role, err := user.GetRoleFromCtx(c); err != nil || role != user.RoleShopkeeper {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "shopkeepers only"})
	}
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}

	payload := new(assignRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.AgentID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "agentId required"})
	}

	updated, err := h.service.AssignAgent(shopkeeperID, id, payload.AgentID)
	if err != nil {
		return h.mapStatusError(c, err)
	}

	return c.JSON(updated)
}

func (h *Handler) mapStatusError(c *fiber.Ctx, err error) error {
	var ite *InvalidTransitionError
	switch {
	case errors.As(err, &ite):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": ite.Error(),
			"detail":  ite,
		})
	case err == ErrNotFound:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "order not found"})
	case err == ErrForbidden:
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "forbidden"})
	case err == ErrUnknownAction:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "unknown action"})
	case err == ErrAgentNotFound:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "delivery agent not found"})
	case err == ErrAgentUnavailable:
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "delivery agent is not available"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
}
