package handlers

import (
	"github.com/gofiber/fiber/v2"

	"marketplace/internal/auth"
	"marketplace/internal/domain"
	applog "marketplace/internal/log"
	"marketplace/internal/services"
)

// Identify attaches the caller, if any, to the request. A bearer token wins
// over the sid cookie.
func Identify(svc *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var u *domain.User
		if tok := auth.BearerToken(c.Get(fiber.HeaderAuthorization)); tok != "" {
			u, _ = svc.TokenUser(c.UserContext(), tok)
		} else if sid := c.Cookies("sid"); sid != "" {
			u, _ = svc.SessionUser(c.UserContext(), sid)
		}
		if u != nil {
			c.Locals("user", u)
			c.Locals("user_id", u.ID)
		}
		return c.Next()
	}
}

func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}

// RequireRole lets through callers holding one of roles. It relies on
// Identify having run.
func RequireRole(roles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := currentUser(c)
		if u == nil {
			c.Status(fiber.StatusUnauthorized)
			applog.Security(c, "access.denied.anonymous", nil)
			return c.JSON(fiber.Map{"error": domain.ErrUnauthorized.Message})
		}
		if !u.HasRole(roles...) {
			c.Status(fiber.StatusForbidden)
			applog.Security(c, "access.denied.role", map[string]any{"role": u.Role})
			return c.JSON(fiber.Map{"error": domain.ErrForbidden.Message})
		}
		return c.Next()
	}
}
