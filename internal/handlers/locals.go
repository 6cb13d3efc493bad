package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/gigflow_be/internal/apperr"
)

// getUserUUID reads the id placed in Locals("userId") by middleware.RequireAuth.
func getUserUUID(c *fiber.Ctx) (uuid.UUID, error) {
	v := c.Locals("userId")
	if v == nil {
		return uuid.Nil, apperr.Auth("Not Authenticated")
	}

	switch t := v.(type) {
	case uuid.UUID:
		return t, nil
	case string:
		id, err := uuid.Parse(t)
		if err != nil {
			return uuid.Nil, apperr.Auth("Token is not valid")
		}
		return id, nil
	default:
		return uuid.Nil, apperr.Auth("Token is not valid")
	}
}

// pathUUID parses a route param. A malformed id can never match a record,
// so it is reported the same way as a missing one.
func pathUUID(c *fiber.Ctx, name, notFound string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperr.NotFound(notFound)
	}
	return id, nil
}
