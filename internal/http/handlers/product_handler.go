package handlers

import (
	"github.com/gofiber/fiber/v2"

	"petcare/internal/log"
	"petcare/internal/services"
	"petcare/internal/validate"
)

type ProductHandler struct {
	Products  *services.ProductService
	Inventory *services.InventoryService
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in services.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	p, err := h.Products.Create(c.UserContext(), businessID(c), in)
	if err != nil {
		return fail(c, err)
	}
	log.Audit(c, "product.create", map[string]any{"product": p.ID, "stock": p.CurrentStock})
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	out, err := h.Products.List(c.UserContext(), businessID(c), validate.Bool(c.Query("lowStock")))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

func (h *ProductHandler) Move(c *fiber.Ctx) error {
	var in services.MoveInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	in.ProductID = c.Params("id")
	m, err := h.Inventory.Move(c.UserContext(), businessID(c), in)
	if err != nil {
		return fail(c, err)
	}
	log.Audit(c, "stock.move", map[string]any{
		"product": m.ProductID,
		"type":    m.Type,
		"qty":     m.Quantity,
		"from":    m.PreviousStock,
		"to":      m.NewStock,
	})
	return c.Status(fiber.StatusCreated).JSON(m)
}

func (h *ProductHandler) Movements(c *fiber.Ctx) error {
	out, err := h.Inventory.Movements(c.UserContext(), businessID(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}
