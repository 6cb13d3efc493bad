package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/gigflow_be/internal/utils"
)

// SessionResolver turns a session token into the user id it was issued for.
// auth.AuthService implements it.
type SessionResolver interface {
	CurrentUser(token string) (uuid.UUID, error)
}

func resolveSession(c *fiber.Ctx, sessions SessionResolver) error {
	uid, err := sessions.CurrentUser(c.Cookies(utils.SessionCookie))
	if err != nil {
		return err
	}
	c.Locals("userId", uid.String())
	return nil
}

// RequireAuth rejects requests without a valid session cookie and puts the
// user id in Locals("userId").
func RequireAuth(sessions SessionResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := resolveSession(c, sessions); err != nil {
			return err
		}
		return c.Next()
	}
}

// OptionalJWT resolves the session cookie when present and never rejects.
// The websocket endpoint uses it so anonymous sockets can still connect.
func OptionalJWT(sessions SessionResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Cookies(utils.SessionCookie) != "" {
			_ = resolveSession(c, sessions)
		}
		return c.Next()
	}
}
