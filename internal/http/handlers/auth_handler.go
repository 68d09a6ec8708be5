package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"marketplace/internal/domain"
	"marketplace/internal/log"
	"marketplace/internal/services"
)

type AuthHandler struct {
	Auth *services.AuthService
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var in loginRequest
	if err := parseBody(c, &in); err != nil {
		return fail(c, "auth.login.invalid", err, nil)
	}
	res, err := h.Auth.Login(c.UserContext(), sid, in.Email, in.Password)
	if err != nil {
		if domain.KindOf(err) == domain.KindUnauthorized {
			log.Security(c, "auth.login.fail", map[string]any{"email": in.Email})
		}
		return fail(c, "auth.login.error", err, nil)
	}
	c.Locals("user_id", res.User.ID)
	log.Audit(c, "auth.login.success", map[string]any{"email": res.User.Email, "role": res.User.Role})
	return c.JSON(res)
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	_ = h.Auth.Logout(c.UserContext(), sid)
	// Expire cookie
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   false,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	log.Audit(c, "auth.logout", map[string]any{"sid": sid})
	return c.JSON(fiber.Map{"ok": true})
}
