package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"

	"petcare/internal/config"
	applog "petcare/internal/log"
	"petcare/internal/metrics"
	"petcare/internal/services"
)

const maxBodySize = 1 << 20 // 1 MiB

// NewApp builds the fiber app with every middleware and route mounted.
func NewApp(db *sqlx.DB, cfg config.Config, auth *services.AuthService) *fiber.App {
	engine := html.New(cfg.TemplatesDir, ".html")

	app := fiber.New(fiber.Config{
		Views:        engine,
		BodyLimit:    maxBodySize,
		ErrorHandler: ErrorHandler,
	})

	// ---------- Middlewares ----------
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(cors.New())
	app.Use(AttachUser(auth))
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := c.Path()
			return p == "/healthz" || p == "/metrics"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return fail(c, fiber.ErrTooManyRequests)
		},
	}))

	deps := NewDeps(db, cfg, auth)
	user := RequireUser(auth)
	admin := RequireAdmin(auth)

	// ---------- Auth ----------
	authG := app.Group("/auth")
	authG.Post("/register", deps.AuthHandler.Register)
	authG.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return fail(c, fiber.ErrTooManyRequests)
		},
	}), deps.AuthHandler.Login)
	authG.Post("/otp/request", limiter.New(limiter.Config{
		Max:        3,
		Expiration: 10 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|otp"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.otp.hit", nil)
			return fail(c, fiber.ErrTooManyRequests)
		},
	}), deps.AuthHandler.RequestOTP)
	authG.Post("/otp/verify", deps.AuthHandler.VerifyOTP)
	authG.Post("/logout", deps.AuthHandler.Logout)
	authG.Get("/me", user, deps.AuthHandler.Me)

	// ---------- Marketplace ----------
	mk := app.Group("/marketplace")
	mk.Get("/listings", deps.ListingHandler.Search)
	mk.Get("/listings/:id", deps.ListingHandler.Get)
	mk.Get("/listings/:id/availability", deps.ListingHandler.Availability)
	mk.Get("/listings/:id/reviews", deps.ListingHandler.Reviews)
	mk.Post("/listings/:id/reviews", deps.ListingHandler.Review)
	mk.Put("/listings/:id", user, deps.ListingHandler.Update)
	mk.Post("/listings/:id/submit", user, deps.ListingHandler.Submit)
	mk.Post("/orders", deps.OrderHandler.Create)
	mk.Get("/orders/:id", deps.OrderHandler.Get)
	mk.Put("/orders/:id/status", user, deps.OrderHandler.UpdateStatus)
	mk.Post("/sellers", user, deps.OrderHandler.CreateSeller)
	mk.Get("/sellers", user, deps.OrderHandler.ListSellers)
	mk.Get("/sellers/:id/payouts", user, deps.OrderHandler.Payouts)
	mk.Get("/sellers/:id/orders", user, deps.OrderHandler.BySeller)
	mk.Post("/sellers/:id/listings", user, deps.ListingHandler.Create)

	// ---------- Boarding ----------
	bo := app.Group("/boarding", user)
	bo.Post("/rooms", deps.BoardingHandler.CreateRoom)
	bo.Get("/rooms", deps.BoardingHandler.Rooms)
	bo.Get("/rooms/:id/availability", deps.BoardingHandler.Availability)
	bo.Post("/reservations", deps.BoardingHandler.Create)
	bo.Get("/reservations/:id", deps.BoardingHandler.Get)
	bo.Post("/reservations/:id/checkin", deps.BoardingHandler.CheckIn)
	bo.Post("/reservations/:id/checkout", deps.BoardingHandler.CheckOut)
	bo.Post("/reservations/:id/cancel", deps.BoardingHandler.Cancel)

	// ---------- Daycare ----------
	dc := app.Group("/daycare", user)
	dc.Post("/packages", deps.DaycareHandler.CreatePackage)
	dc.Post("/enrollments", deps.DaycareHandler.Enroll)
	dc.Get("/enrollments/:id", deps.DaycareHandler.Enrollment)
	dc.Get("/enrollments/:id/attendance", deps.DaycareHandler.Attendance)
	dc.Post("/attendance/:enrollmentId/checkin", deps.DaycareHandler.CheckIn)
	dc.Post("/attendance/:enrollmentId/checkout", deps.DaycareHandler.CheckOut)

	// ---------- Retail ----------
	app.Post("/products", user, deps.ProductHandler.Create)
	app.Get("/products", user, deps.ProductHandler.List)
	app.Post("/products/:id/movements", user, deps.ProductHandler.Move)
	app.Get("/products/:id/movements", user, deps.ProductHandler.Movements)
	app.Post("/sales", user, deps.SalesHandler.Create)
	app.Get("/sales", user, deps.SalesHandler.List)
	app.Get("/finance/cash-register/:date", user, deps.SalesHandler.Register)
	app.Post("/finance/cash-register/:date/close", user, deps.SalesHandler.Close)
	app.Get("/analytics/dashboard", user, deps.SalesHandler.Dashboard)

	// HTML reports carry a form, so only they go through csrf.
	reports := app.Group("/reports", user, csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   cfg.CookieSecure,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", map[string]any{"form": c.FormValue("csrf")})
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
		},
	}), func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})
	reports.Get("/cash-register/:date", deps.SalesHandler.Report)
	reports.Post("/cash-register/:date/close", deps.SalesHandler.ReportClose)

	// ---------- Pet sitters ----------
	ps := app.Group("/petsitters")
	ps.Post("/", deps.PetSitterHandler.Register)
	ps.Get("/:id", deps.PetSitterHandler.Get)
	ps.Post("/:id/bookings", deps.PetSitterHandler.Book)
	ps.Post("/bookings/:id/review", deps.PetSitterHandler.Review)

	// ---------- Admin ----------
	ad := app.Group("/admin", admin)
	ad.Post("/marketplace/listings/:id/approve", deps.ListingHandler.Approve)
	ad.Post("/marketplace/listings/:id/reject", deps.ListingHandler.Reject)
	ad.Put("/marketplace/orders/:id/status", deps.OrderHandler.UpdateStatus)
	ad.Put("/marketplace/reviews/:id/publish", deps.ListingHandler.Publish)
	ad.Put("/petsitters/bookings/:id/status", deps.PetSitterHandler.UpdateBookingStatus)
	ad.Post("/petsitters/:id/payouts", deps.PetSitterHandler.Payout)
	ad.Delete("/users/:id/sessions", deps.AuthHandler.RevokeSessions)

	// ---------- Health, metrics & 404 ----------
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	app.Use(func(c *fiber.Ctx) error {
		if strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMETextHTML) {
			return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Page not found"})
		}
		return fail(c, fiber.ErrNotFound)
	})

	return app
}
