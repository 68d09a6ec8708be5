package handlers

import (
	"github.com/gofiber/fiber/v2"

	"marketplace/internal/domain"
	applog "marketplace/internal/log"
	"marketplace/internal/services"
)

var errQuantityRequired = domain.Invalidf("quantity is required")

type OrderHandler struct {
	Order *services.OrderService
}

// POST /api/checkout
func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var in services.CheckoutInput
	if err := parseBody(c, &in); err != nil {
		applog.Security(c, "validation.fail", map[string]any{"field": "body"})
		return fail(c, "checkout.invalid", err, nil)
	}
	o, err := h.Order.Checkout(c.UserContext(), sid, in)
	if err != nil {
		if domain.KindOf(err) == domain.KindInvalid {
			applog.Security(c, "validation.fail", map[string]any{"reason": err.Error()})
		}
		return fail(c, "checkout.fail", err, nil)
	}
	c.Status(fiber.StatusCreated)
	applog.Info(c, "checkout.success", map[string]any{"order_id": o.ID, "total": o.Total})
	return c.JSON(o)
}
