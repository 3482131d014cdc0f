package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"petcare/internal/domain"
	"petcare/internal/log"
	"petcare/internal/services"
)

type BoardingHandler struct {
	Boarding *services.BoardingService
}

func (h *BoardingHandler) CreateRoom(c *fiber.Ctx) error {
	var in services.RoomInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	r, err := h.Boarding.CreateRoom(c.UserContext(), businessID(c), in)
	if err != nil {
		return fail(c, err)
	}
	log.Audit(c, "boarding.room.create", map[string]any{"room": r.ID})
	return c.Status(fiber.StatusCreated).JSON(r)
}

func (h *BoardingHandler) Rooms(c *fiber.Ctx) error {
	out, err := h.Boarding.ListRooms(c.UserContext(), businessID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

func (h *BoardingHandler) Availability(c *fiber.Ctx) error {
	a, err := h.Boarding.RoomAvailability(c.UserContext(), businessID(c), c.Params("id"), c.Query("start"), c.Query("end"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(a)
}

func (h *BoardingHandler) Create(c *fiber.Ctx) error {
	var in services.BoardingInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	b, err := h.Boarding.Create(c.UserContext(), businessID(c), in)
	if err != nil {
		return fail(c, err)
	}
	log.Audit(c, "boarding.reserve", map[string]any{"boarding": b.ID, "room": b.RoomID, "total": b.TotalAmount})
	return c.Status(fiber.StatusCreated).JSON(b)
}

func (h *BoardingHandler) Get(c *fiber.Ctx) error {
	b, err := h.Boarding.Get(c.UserContext(), businessID(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(b)
}

func (h *BoardingHandler) CheckIn(c *fiber.Ctx) error {
	return h.step(c, h.Boarding.CheckIn)
}

func (h *BoardingHandler) CheckOut(c *fiber.Ctx) error {
	return h.step(c, h.Boarding.CheckOut)
}

func (h *BoardingHandler) Cancel(c *fiber.Ctx) error {
	return h.step(c, h.Boarding.Cancel)
}

type boardingStep func(ctx context.Context, businessID, id string) (*domain.Boarding, error)

func (h *BoardingHandler) step(c *fiber.Ctx, fn boardingStep) error {
	b, err := fn(c.UserContext(), businessID(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	log.Audit(c, "boarding.status", map[string]any{"boarding": b.ID, "status": b.Status})
	return c.JSON(b)
}
