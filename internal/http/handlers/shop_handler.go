package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "marketplace/internal/log"
	"marketplace/internal/services"
)

type ShopHandler struct {
	Shops *services.ShopService
}

// GET /api/shops
func (h *ShopHandler) List(c *fiber.Ctx) error {
	shops, err := h.Shops.List(c.UserContext())
	if err != nil {
		return fail(c, "shops.list.fail", err, nil)
	}
	return c.JSON(fiber.Map{"shops": shops})
}

// GET /api/shops/:slug
func (h *ShopHandler) Storefront(c *fiber.Ctx) error {
	sf, err := h.Shops.Storefront(c.UserContext(), c.Params("slug"), c.QueryInt("page", 1), c.QueryInt("pageSize", 12))
	if err != nil {
		return fail(c, "shops.storefront.fail", err, nil)
	}
	return c.JSON(sf)
}

// POST /api/shops/create
func (h *ShopHandler) Create(c *fiber.Ctx) error {
	var in services.ShopCreate
	if err := parseBody(c, &in); err != nil {
		return fail(c, "shops.create.invalid", err, nil)
	}
	s, err := h.Shops.Create(c.UserContext(), in)
	if err != nil {
		return fail(c, "shops.create.fail", err, map[string]any{"slug": in.Slug})
	}
	c.Status(fiber.StatusCreated)
	applog.Audit(c, "shops.create", map[string]any{"shop_id": s.ID, "slug": s.Slug})
	return c.JSON(s)
}

// POST /api/shops/update
func (h *ShopHandler) Update(c *fiber.Ctx) error {
	var in services.ShopUpdate
	if err := parseBody(c, &in); err != nil {
		return fail(c, "shops.update.invalid", err, nil)
	}
	s, err := h.Shops.Update(c.UserContext(), in)
	if err != nil {
		return fail(c, "shops.update.fail", err, map[string]any{"shop_id": in.ID})
	}
	applog.Audit(c, "shops.update", map[string]any{"shop_id": s.ID, "slug": s.Slug})
	return c.JSON(s)
}

// DELETE /api/shops/:id
func (h *ShopHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Shops.Delete(c.UserContext(), id); err != nil {
		return fail(c, "shops.delete.fail", err, map[string]any{"shop_id": id})
	}
	applog.Audit(c, "shops.delete", map[string]any{"shop_id": id})
	return c.JSON(fiber.Map{"ok": true, "id": id})
}
