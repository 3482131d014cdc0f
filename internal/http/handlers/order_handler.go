package handlers

import (
	"github.com/gofiber/fiber/v2"

	"petcare/internal/log"
	"petcare/internal/services"
)

type OrderHandler struct {
	Orders  *services.OrderService
	Sellers *services.SellerService
}

func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in services.CreateOrderInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	o, err := h.Orders.Create(c.UserContext(), in)
	if err != nil {
		return fail(c, err)
	}
	log.Audit(c, "order.place", map[string]any{
		"order":  o.OrderNumber,
		"seller": o.SellerID,
		"total":  o.TotalAmount,
		"items":  len(o.Items),
	})
	return c.Status(fiber.StatusCreated).JSON(o)
}

func (h *OrderHandler) Get(c *fiber.Ctx) error {
	o, err := h.Orders.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(o)
}

func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	var in services.StatusInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	o, err := h.Orders.UpdateStatus(c.UserContext(), scope(c), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	log.Audit(c, "order.status", map[string]any{"order": o.OrderNumber, "status": o.Status})
	return c.JSON(o)
}

func (h *OrderHandler) BySeller(c *fiber.Ctx) error {
	out, err := h.Orders.ListBySeller(c.UserContext(), scope(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

func (h *OrderHandler) CreateSeller(c *fiber.Ctx) error {
	var in services.SellerInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	s, err := h.Sellers.Create(c.UserContext(), businessID(c), in)
	if err != nil {
		return fail(c, err)
	}
	log.Audit(c, "seller.create", map[string]any{"seller": s.ID})
	return c.Status(fiber.StatusCreated).JSON(s)
}

func (h *OrderHandler) Payouts(c *fiber.Ctx) error {
	p, err := h.Sellers.PayoutSummary(c.UserContext(), scope(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(p)
}

func (h *OrderHandler) ListSellers(c *fiber.Ctx) error {
	out, err := h.Sellers.List(c.UserContext(), businessID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}
