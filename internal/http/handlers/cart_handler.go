package handlers

import (
	"github.com/gofiber/fiber/v2"

	"marketplace/internal/pricing"
	"marketplace/internal/services"
	"marketplace/internal/validate"
)

type CartHandler struct {
	Cart *services.CartService
}

type cartLine struct {
	ProductID string           `json:"productId"`
	Quantity  *validate.Amount `json:"quantity"`
}

// POST /api/cart/quote prices lines held by the client.
func (h *CartHandler) Quote(c *fiber.Ctx) error {
	var in struct {
		Lines []pricing.Line `json:"lines"`
	}
	if err := parseBody(c, &in); err != nil {
		return fail(c, "cart.quote.invalid", err, nil)
	}
	q, err := h.Cart.Quote(c.UserContext(), in.Lines)
	if err != nil {
		return fail(c, "cart.quote.fail", err, nil)
	}
	return c.JSON(q)
}

// GET /api/cart
func (h *CartHandler) View(c *fiber.Ctx) error {
	q, err := h.Cart.View(c.UserContext(), ensureSID(c))
	if err != nil {
		return fail(c, "cart.view.fail", err, nil)
	}
	return c.JSON(q)
}

// POST /api/cart/items
func (h *CartHandler) Add(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var in cartLine
	if err := parseBody(c, &in); err != nil {
		return fail(c, "cart.add.invalid", err, nil)
	}
	if err := h.Cart.Add(c.UserContext(), sid, in.ProductID, validate.Quantity(in.Quantity, 1)); err != nil {
		return fail(c, "cart.add.fail", err, map[string]any{"product_id": in.ProductID})
	}
	return h.View(c)
}

// PUT /api/cart/items/:productId
func (h *CartHandler) Set(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var in cartLine
	if err := parseBody(c, &in); err != nil {
		return fail(c, "cart.set.invalid", err, nil)
	}
	if in.Quantity == nil {
		return fail(c, "cart.set.invalid", errQuantityRequired, nil)
	}
	if err := h.Cart.Set(c.UserContext(), sid, c.Params("productId"), in.Quantity.Rounded()); err != nil {
		return fail(c, "cart.set.fail", err, map[string]any{"product_id": c.Params("productId")})
	}
	return h.View(c)
}

// DELETE /api/cart/items/:productId
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	if err := h.Cart.Remove(c.UserContext(), ensureSID(c), c.Params("productId")); err != nil {
		return fail(c, "cart.remove.fail", err, nil)
	}
	return h.View(c)
}
