package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/gigflow_be/internal/models"
	"github.com/Windi-Fikriyansyah/gigflow_be/internal/services/auth"
	"github.com/Windi-Fikriyansyah/gigflow_be/internal/utils"
)

type AuthHandler struct {
	Auth         *auth.AuthService
	CookieSecure bool
}

func NewAuthHandler(svc *auth.AuthService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{Auth: svc, CookieSecure: cookieSecure}
}

func (h *AuthHandler) Routes(r fiber.Router, authMiddleware fiber.Handler) {
	g := r.Group("/auth")
	g.Post("/register", h.Register)
	g.Post("/login", h.Login)
	g.Post("/logout", h.Logout)
	g.Get("/me", authMiddleware, h.Me)
}

// sameSite: cross-site frontend butuh None, dan None wajib Secure
func sameSite(secure bool) string {
	if secure {
		return fiber.CookieSameSiteNoneMode
	}
	return fiber.CookieSameSiteLaxMode
}

var cookieExpired = time.Unix(0, 0)

func (h *AuthHandler) setSession(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     utils.SessionCookie,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.CookieSecure,
		SameSite: sameSite(h.CookieSecure),
		MaxAge:   h.Auth.Expires * 60,
	})
}

func (h *AuthHandler) clearSession(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     utils.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  cookieExpired, // fasthttp hanya menulis Max-Age kalau > 0
		HTTPOnly: true,
		Secure:   h.CookieSecure,
		SameSite: sameSite(h.CookieSecure),
	})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req auth.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return badBody()
	}

	u, err := h.Auth.Register(c.UserContext(), req)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusCreated, "User registered successfully", fiber.Map{
		"userId": u.ID,
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req auth.LoginInput
	if err := c.BodyParser(&req); err != nil {
		return badBody()
	}

	u, token, err := h.Auth.Login(c.UserContext(), req)
	if err != nil {
		return err
	}

	h.setSession(c, token)
	return respond(c, fiber.StatusOK, "Login successful", fiber.Map{
		"id":   u.ID,
		"name": u.Name,
	})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	uid, err := getUserUUID(c)
	if err != nil {
		return err
	}

	u, err := h.Auth.Profile(c.UserContext(), uid)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "OK", toUserResponse(u))
}

// Logout always succeeds, with or without a session.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.clearSession(c)
	return respond(c, fiber.StatusOK, "Logged out successfully", nil)
}

type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID.String(), Name: u.Name, Email: u.Email}
}
