package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "petcare/internal/log"
	"petcare/internal/services"
)

// fail writes the {statusCode, message} error body for err.
func fail(c *fiber.Ctx, err error) error {
	return writeError(c, err, "request.failed")
}

// writeError hides the message of anything that maps to 500 and logs it under event.
func writeError(c *fiber.Ctx, err error, event string) error {
	status := statusFor(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		applog.Error(c, event, err, nil)
		msg = "internal error"
	}
	return c.Status(status).JSON(fiber.Map{"statusCode": status, "message": msg})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrInsufficientStock),
		errors.Is(err, services.ErrInsufficientCredits):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return fiber.StatusForbidden
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"statusCode": fiber.StatusBadRequest, "message": msg})
}

// ErrorHandler is the app-level fallback for errors returned by handlers and
// middleware that did not write a response themselves, recovered panics included.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return writeError(c, err, "server.error")
}
