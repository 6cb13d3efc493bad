package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/gigflow_be/internal/apperr"
)

const serverErrorMessage = "Server error. Please try again later."

func respond(c *fiber.Ctx, status int, message string, data interface{}) error {
	body := fiber.Map{
		"success": true,
		"message": message,
	}
	if data != nil {
		body["data"] = data
	}
	return c.Status(status).JSON(body)
}

func badBody() error {
	return apperr.Validation("Invalid body")
}

// ErrorHandler turns handler errors into the JSON envelope. Domain errors keep
// their message; anything unclassified is logged and reported generically.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{
			"success": false,
			"message": fe.Message,
		})
	}

	status := apperr.HTTPStatus(err)
	if status == fiber.StatusInternalServerError {
		log.Printf("[HTTP] %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(status).JSON(fiber.Map{
			"success": false,
			"message": serverErrorMessage,
		})
	}

	body := fiber.Map{
		"success": false,
		"message": err.Error(),
	}
	var ae *apperr.Error
	if errors.As(err, &ae) && len(ae.Fields) > 0 {
		body["errors"] = ae.Fields
	}
	return c.Status(status).JSON(body)
}
