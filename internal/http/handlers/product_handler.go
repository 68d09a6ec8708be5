package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "marketplace/internal/log"
	"marketplace/internal/services"
)

type ProductHandler struct {
	Products *services.ProductService
}

// POST /api/products/create
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in services.ProductInput
	if err := parseBody(c, &in); err != nil {
		return fail(c, "products.create.invalid", err, nil)
	}
	p, err := h.Products.Create(c.UserContext(), in)
	if err != nil {
		return fail(c, "products.create.fail", err, map[string]any{"seller_id": in.SellerID})
	}
	c.Status(fiber.StatusCreated)
	applog.Audit(c, "products.create", map[string]any{"product_id": p.ID, "seller_id": p.SellerID})
	return c.JSON(p)
}

// PUT /api/products/:id
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	var in services.ProductInput
	if err := parseBody(c, &in); err != nil {
		return fail(c, "products.update.invalid", err, map[string]any{"product_id": id})
	}
	p, released, err := h.Products.Update(c.UserContext(), id, in)
	if err != nil {
		return fail(c, "products.update.fail", err, map[string]any{"product_id": id})
	}
	applog.Audit(c, "products.update", map[string]any{"product_id": id, "released_images": len(released)})
	return c.JSON(p)
}

// DELETE /api/products/:id
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Products.Delete(c.UserContext(), id); err != nil {
		return fail(c, "products.delete.fail", err, map[string]any{"product_id": id})
	}
	applog.Audit(c, "products.delete", map[string]any{"product_id": id})
	return c.JSON(fiber.Map{"ok": true, "id": id})
}

// GET /api/products/:id
func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	p, err := h.Products.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, "products.get.fail", err, nil)
	}
	return c.JSON(p)
}
