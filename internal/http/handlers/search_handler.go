package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"marketplace/internal/log"
	"marketplace/internal/services"
	"marketplace/internal/validate"
)

type SearchHandler struct {
	Catalog *services.CatalogService
}

// GET /api/products?q=&category=&seller=&available=&page=&pageSize=
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	rawQ := c.Query("q")
	if strings.TrimSpace(rawQ) != "" {
		if _, ok := validate.Q(rawQ); !ok {
			log.Security(c, "validation.fail", map[string]any{"field": "q", "value": rawQ})
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "enter a valid keyword (letters/numbers only)"})
		}
	}
	for _, field := range []string{"category", "seller"} {
		if v := strings.TrimSpace(c.Query(field)); v != "" {
			if _, ok := validate.ID(v); !ok {
				log.Security(c, "validation.fail", map[string]any{"field": field})
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid " + field})
			}
		}
	}

	q := services.SearchQuery{
		Q:             rawQ,
		Category:      c.Query("category"),
		Seller:        c.Query("seller"),
		AvailableOnly: c.QueryBool("available", false),
		Page:          c.QueryInt("page", 1),
		PageSize:      c.QueryInt("pageSize", 12),
	}
	products, err := h.Catalog.Search(c.UserContext(), q)
	if err != nil {
		return fail(c, "search.error", err, nil)
	}
	return c.JSON(fiber.Map{"products": products, "count": len(products), "page": q.Page})
}
