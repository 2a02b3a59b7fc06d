package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler renders request errors as a JSON message body.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	}

	return c.Status(code).JSON(fiber.Map{"message": message})
}
