package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "marketplace/internal/log"
	"marketplace/internal/pricing"
	"marketplace/internal/services"
)

type AdminHandler struct {
	Orders    *services.OrderService
	Shipments *services.ShipmentService
}

// GET /api/admin/orders
func (h *AdminHandler) ListOrders(c *fiber.Ctx) error {
	ords, err := h.Orders.List(c.UserContext(), c.QueryInt("limit", 100))
	if err != nil {
		return fail(c, "admin.orders.list.fail", err, nil)
	}
	return c.JSON(fiber.Map{"orders": ords})
}

// GET /api/admin/orders/:id
func (h *AdminHandler) GetOrder(c *fiber.Ctx) error {
	o, err := h.Orders.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, "admin.orders.get.fail", err, nil)
	}
	return c.JSON(o)
}

// POST /api/admin/orders/:id/status
func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	id := c.Params("id")
	var in services.StatusChange
	if err := parseBody(c, &in); err != nil {
		return fail(c, "admin.orders.update.invalid", err, nil)
	}
	o, override, err := h.Orders.SetStatus(c.UserContext(), id, in)
	if err != nil {
		return fail(c, "admin.orders.update.fail", err, map[string]any{"order_id": id, "status": in.Status})
	}
	applog.Audit(c, "admin.orders.update", map[string]any{"order_id": id, "status": o.Status, "override": override})
	return c.JSON(fiber.Map{"order": o, "override": override})
}

// POST /api/admin/shipments/estimate
func (h *AdminHandler) EstimateShipment(c *fiber.Ctx) error {
	var d pricing.Draft
	if err := parseBody(c, &d); err != nil {
		return fail(c, "admin.shipments.estimate.invalid", err, nil)
	}
	est, err := h.Shipments.Estimate(d)
	if err != nil {
		return fail(c, "admin.shipments.estimate.fail", err, nil)
	}
	return c.JSON(est)
}

// POST /api/admin/shipments
func (h *AdminHandler) CreateShipment(c *fiber.Ctx) error {
	var in services.ShipmentDraft
	if err := parseBody(c, &in); err != nil {
		return fail(c, "admin.shipments.create.invalid", err, nil)
	}
	sh, err := h.Shipments.Create(c.UserContext(), in)
	if err != nil {
		return fail(c, "admin.shipments.create.fail", err, nil)
	}
	c.Status(fiber.StatusCreated)
	applog.Audit(c, "admin.shipments.create", map[string]any{"shipment_id": sh.ID, "total": sh.Estimate.Total})
	return c.JSON(sh)
}

// GET /api/admin/shipments
func (h *AdminHandler) ListShipments(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"shipments": h.Shipments.List(c.UserContext())})
}

// POST /api/admin/shipments/:id/status
func (h *AdminHandler) UpdateShipmentStatus(c *fiber.Ctx) error {
	id := c.Params("id")
	var in services.StatusChange
	if err := parseBody(c, &in); err != nil {
		return fail(c, "admin.shipments.update.invalid", err, nil)
	}
	sh, override, err := h.Shipments.SetStatus(c.UserContext(), id, in)
	if err != nil {
		return fail(c, "admin.shipments.update.fail", err, map[string]any{"shipment_id": id})
	}
	applog.Audit(c, "admin.shipments.update", map[string]any{"shipment_id": id, "status": sh.Status, "override": override})
	return c.JSON(fiber.Map{"shipment": sh, "override": override})
}
