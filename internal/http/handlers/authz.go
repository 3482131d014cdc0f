package handlers

import (
	"github.com/gofiber/fiber/v2"

	"petcare/internal/domain"
	applog "petcare/internal/log"
	"petcare/internal/services"
)

func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}

// AttachUser resolves the sid cookie, when present, without enforcing anything.
func AttachUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		resolveUser(c, auth)
		return c.Next()
	}
}

func resolveUser(c *fiber.Ctx, auth *services.AuthService) *domain.User {
	if u := currentUser(c); u != nil {
		return u
	}
	sid := c.Cookies("sid")
	if sid == "" {
		return nil
	}
	u, err := auth.CurrentUser(c.UserContext(), sid)
	if err != nil || u == nil {
		return nil
	}
	c.Locals("user", u)
	c.Locals("userID", u.ID)
	c.Locals("businessID", u.BusinessID)
	return u
}

// RequireUser enforces that a user is logged in.
func RequireUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if resolveUser(c, auth) == nil {
			return fail(c, services.ErrUnauthorized)
		}
		return c.Next()
	}
}

// RequireAdmin enforces platform staff.
func RequireAdmin(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := resolveUser(c, auth)
		if u == nil {
			return fail(c, services.ErrUnauthorized)
		}
		if u.Role != domain.RoleAdmin {
			applog.Security(c, "access.denied.admin", map[string]any{"user": u.ID})
			return fail(c, services.ErrForbidden)
		}
		return c.Next()
	}
}

func businessID(c *fiber.Ctx) string {
	if u := currentUser(c); u != nil {
		return u.BusinessID
	}
	return ""
}

func scope(c *fiber.Ctx) services.Scope {
	u := currentUser(c)
	if u == nil {
		return services.Scope{}
	}
	return services.Scope{BusinessID: u.BusinessID, Admin: u.Role == domain.RoleAdmin}
}
