package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"petcare/internal/log"
	"petcare/internal/services"
	"petcare/internal/validate"
)

type AuthHandler struct {
	Auth         *services.AuthService
	CookieSecure bool
}

func (h *AuthHandler) ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		h.setSID(c, sid, time.Time{})
	}
	return sid
}

func (h *AuthHandler) setSID(c *fiber.Ctx, sid string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    sid,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   h.CookieSecure,
		Expires:  expires,
	})
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type otpBody struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in services.RegisterInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	sid := h.ensureSID(c)
	u, err := h.Auth.Register(c.UserContext(), sid, in)
	if err != nil {
		log.Security(c, "auth.register.fail", map[string]any{"email": in.Email})
		return fail(c, err)
	}
	c.Locals("userID", u.ID)
	log.Audit(c, "auth.register.success", map[string]any{"email": u.Email, "business": u.BusinessID})
	return c.Status(fiber.StatusCreated).JSON(u)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in loginBody
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	if _, ok := validate.Email(in.Email); !ok {
		log.Security(c, "auth.login.fail", map[string]any{"email": in.Email, "reason": "bad_format"})
		return fail(c, services.ErrBadCreds)
	}
	sid := h.ensureSID(c)
	u, err := h.Auth.Login(c.UserContext(), sid, in.Email, in.Password)
	if err != nil {
		log.Security(c, "auth.login.fail", map[string]any{"email": in.Email})
		return fail(c, err)
	}
	c.Locals("userID", u.ID)
	log.Audit(c, "auth.login.success", map[string]any{"email": u.Email})
	return c.JSON(u)
}

func (h *AuthHandler) RequestOTP(c *fiber.Ctx) error {
	var in otpBody
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := h.Auth.RequestOTP(c.UserContext(), in.Phone); err != nil {
		return fail(c, err)
	}
	// the answer is the same whether or not the phone is registered
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"sent": true})
}

func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var in otpBody
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	sid := h.ensureSID(c)
	u, err := h.Auth.VerifyOTP(c.UserContext(), sid, in.Phone, in.Code)
	if err != nil {
		if errors.Is(err, services.ErrUnauthorized) {
			log.Security(c, "auth.otp.fail", map[string]any{"phone": in.Phone})
		}
		return fail(c, err)
	}
	c.Locals("userID", u.ID)
	log.Audit(c, "auth.otp.success", map[string]any{"user": u.ID})
	return c.JSON(u)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := c.Cookies("sid")
	if sid != "" {
		if err := h.Auth.Logout(c.UserContext(), sid); err != nil {
			return fail(c, err)
		}
	}
	h.setSID(c, "", time.Now().Add(-1*time.Hour))
	log.Audit(c, "auth.logout", map[string]any{"sid": sid})
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return c.JSON(currentUser(c))
}

func (h *AuthHandler) RevokeSessions(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Auth.RevokeSessions(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	log.Audit(c, "admin.sessions.revoke", map[string]any{"user": id})
	return c.SendStatus(fiber.StatusNoContent)
}
