package handlers

import (
	"github.com/gofiber/fiber/v2"

	"petcare/internal/log"
	"petcare/internal/services"
)

type DaycareHandler struct {
	Daycare *services.DaycareService
}

type attendanceBody struct {
	Date string `json:"date"`
}

func (h *DaycareHandler) CreatePackage(c *fiber.Ctx) error {
	var in services.PackageInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	p, err := h.Daycare.CreatePackage(c.UserContext(), businessID(c), in)
	if err != nil {
		return fail(c, err)
	}
	log.Audit(c, "daycare.package.create", map[string]any{"package": p.ID})
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *DaycareHandler) Enroll(c *fiber.Ctx) error {
	var in services.EnrollInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	e, err := h.Daycare.Enroll(c.UserContext(), businessID(c), in)
	if err != nil {
		return fail(c, err)
	}
	log.Audit(c, "daycare.enroll", map[string]any{"enrollment": e.ID, "credits": e.TotalCredits})
	return c.Status(fiber.StatusCreated).JSON(e)
}

func (h *DaycareHandler) Enrollment(c *fiber.Ctx) error {
	e, err := h.Daycare.GetEnrollment(c.UserContext(), businessID(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(e)
}

func (h *DaycareHandler) Attendance(c *fiber.Ctx) error {
	out, err := h.Daycare.Attendance(c.UserContext(), businessID(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// date is optional in the body; empty means today.
func attendanceDate(c *fiber.Ctx) string {
	var in attendanceBody
	if len(c.Body()) > 0 {
		_ = c.BodyParser(&in)
	}
	return in.Date
}

func (h *DaycareHandler) CheckIn(c *fiber.Ctx) error {
	a, err := h.Daycare.CheckIn(c.UserContext(), businessID(c), c.Params("enrollmentId"), attendanceDate(c))
	if err != nil {
		return fail(c, err)
	}
	log.Audit(c, "daycare.checkin", map[string]any{"enrollment": a.EnrollmentID, "date": a.Date})
	return c.JSON(a)
}

func (h *DaycareHandler) CheckOut(c *fiber.Ctx) error {
	a, err := h.Daycare.CheckOut(c.UserContext(), businessID(c), c.Params("enrollmentId"), attendanceDate(c))
	if err != nil {
		return fail(c, err)
	}
	log.Audit(c, "daycare.checkout", map[string]any{"enrollment": a.EnrollmentID, "date": a.Date})
	return c.JSON(a)
}
