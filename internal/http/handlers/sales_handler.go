package handlers

import (
	"github.com/gofiber/fiber/v2"

	"petcare/internal/log"
	"petcare/internal/services"
)

type SalesHandler struct {
	Sales     *services.SalesService
	Registers *services.CashRegisterService
	Analytics *services.AnalyticsService
}

func (h *SalesHandler) Create(c *fiber.Ctx) error {
	var in services.SaleInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	s, err := h.Sales.Create(c.UserContext(), businessID(c), in)
	if err != nil {
		return fail(c, err)
	}
	log.Audit(c, "sale.create", map[string]any{"sale": s.SaleNumber, "total": s.TotalAmount, "method": s.PaymentMethod})
	return c.Status(fiber.StatusCreated).JSON(s)
}

func (h *SalesHandler) List(c *fiber.Ctx) error {
	out, err := h.Sales.List(c.UserContext(), businessID(c), c.Query("date"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

func (h *SalesHandler) Register(c *fiber.Ctx) error {
	r, err := h.Registers.Get(c.UserContext(), businessID(c), c.Params("date"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(r)
}

func (h *SalesHandler) Close(c *fiber.Ctx) error {
	r, err := h.Registers.Close(c.UserContext(), businessID(c), c.Params("date"))
	if err != nil {
		return fail(c, err)
	}
	log.Audit(c, "cash_register.close", map[string]any{"date": r.Date, "total": r.TotalSales})
	return c.JSON(r)
}

// Report is the printable HTML version of the day's register.
func (h *SalesHandler) Report(c *fiber.Ctx) error {
	r, err := h.Registers.Get(c.UserContext(), businessID(c), c.Params("date"))
	if err != nil {
		if statusFor(err) == fiber.StatusInternalServerError {
			return fail(c, err)
		}
		return c.Status(statusFor(err)).Render("notfound", fiber.Map{"Message": err.Error()})
	}
	return render(c, "cash_register", fiber.Map{"Register": r})
}

func (h *SalesHandler) Dashboard(c *fiber.Ctx) error {
	d, err := h.Analytics.Dashboard(c.UserContext(), businessID(c), c.Query("date"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(d)
}

// ReportClose is the form action behind the report's close button.
func (h *SalesHandler) ReportClose(c *fiber.Ctx) error {
	r, err := h.Registers.Close(c.UserContext(), businessID(c), c.Params("date"))
	if err != nil {
		return fail(c, err)
	}
	log.Audit(c, "cash_register.close", map[string]any{"date": r.Date, "total": r.TotalSales})
	return c.Redirect("/reports/cash-register/" + r.Date)
}
