package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"marketplace/internal/domain"
	applog "marketplace/internal/log"
)

var kindStatus = map[domain.Kind]int{
	domain.KindInvalid:      fiber.StatusBadRequest,
	domain.KindUnauthorized: fiber.StatusUnauthorized,
	domain.KindForbidden:    fiber.StatusForbidden,
	domain.KindNotFound:     fiber.StatusNotFound,
	domain.KindConflict:     fiber.StatusConflict,
}

const internalMessage = "something went wrong, please retry"

// fail answers err as {"error": ...}. Unclassified errors are logged under
// action and answered with a generic message.
func fail(c *fiber.Ctx, action string, err error, fields map[string]any) error {
	status, ok := kindStatus[domain.KindOf(err)]
	if !ok {
		c.Status(fiber.StatusInternalServerError)
		applog.Error(c, action, err, fields)
		return c.JSON(fiber.Map{"error": internalMessage})
	}
	c.Status(status)
	if status == fiber.StatusConflict || status == fiber.StatusNotFound {
		applog.Info(c, action, mergeFields(fields, map[string]any{"reason": err.Error()}))
	}
	return c.JSON(fiber.Map{"error": err.Error()})
}

// parseBody decodes a JSON body. Decoding failures are validation errors.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		var de *domain.Error
		if errors.As(err, &de) {
			return de
		}
		return domain.Invalidf("malformed request body")
	}
	return nil
}

// ensureSID returns the session id, issuing the cookie on first contact.
func ensureSID(c *fiber.Ctx) string {
	if sid, ok := c.Locals("sid").(string); ok && sid != "" {
		return sid
	}
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   false, // enable true behind TLS
		})
	}
	c.Locals("sid", sid)
	return sid
}

func mergeFields(a, b map[string]any) map[string]any {
	out := make(map[string]any, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}
