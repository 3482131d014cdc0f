package handlers

import (
	"github.com/gofiber/fiber/v2"

	"petcare/internal/log"
	"petcare/internal/services"
)

type PetSitterHandler struct {
	Sitters *services.PetSitterService
}

func (h *PetSitterHandler) Register(c *fiber.Ctx) error {
	var in services.SitterInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	ps, err := h.Sitters.Register(c.UserContext(), in)
	if err != nil {
		return fail(c, err)
	}
	log.Audit(c, "petsitter.register", map[string]any{"sitter": ps.ID})
	return c.Status(fiber.StatusCreated).JSON(ps)
}

func (h *PetSitterHandler) Get(c *fiber.Ctx) error {
	ps, err := h.Sitters.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(ps)
}

func (h *PetSitterHandler) Book(c *fiber.Ctx) error {
	var in services.BookingInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	b, err := h.Sitters.CreateBooking(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	log.Audit(c, "petsitter.booking.create", map[string]any{"booking": b.ID, "total": b.TotalAmount})
	return c.Status(fiber.StatusCreated).JSON(b)
}

func (h *PetSitterHandler) Review(c *fiber.Ctx) error {
	var in services.SitterReviewInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	r, err := h.Sitters.Review(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(r)
}

func (h *PetSitterHandler) UpdateBookingStatus(c *fiber.Ctx) error {
	var in services.StatusInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	b, err := h.Sitters.UpdateBookingStatus(c.UserContext(), c.Params("id"), in.Status)
	if err != nil {
		return fail(c, err)
	}
	log.Audit(c, "admin.petsitter.booking.status", map[string]any{"booking": b.ID, "status": b.Status})
	return c.JSON(b)
}

func (h *PetSitterHandler) Payout(c *fiber.Ctx) error {
	p, err := h.Sitters.CreatePayout(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	log.Audit(c, "admin.petsitter.payout", map[string]any{"sitter": p.SitterID, "amount": p.Amount, "bookings": p.BookingsCount})
	return c.Status(fiber.StatusCreated).JSON(p)
}
