package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"marketplace/internal/config"
	"marketplace/internal/domain"
	applog "marketplace/internal/log"
)

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		applog.Error(c, "server.error", err, nil)
		return c.Status(code).JSON(fiber.Map{"error": internalMessage})
	}
	return c.Status(code).JSON(fiber.Map{"error": fe.Message})
}

// NewApp builds the HTTP surface: middleware chain and routes.
func NewApp(cfg config.Config, d *Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "marketplace",
		BodyLimit:    cfg.BodyLimit,
		ErrorHandler: errorHandler,
	})

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(logger.New(logger.Config{
		Output: applog.Base().Writer(),
		Format: "${status} ${method} ${path} ${latency} req=${locals:requestid}\n",
	}))
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}))
	app.Use(Identify(d.Auth))

	owner := RequireRole(domain.RoleOwner, domain.RoleAdmin)
	api := app.Group("/api")

	// Catalog
	api.Get("/categories", d.CategoryHandler.List)
	api.Get("/products", limiter.New(limiter.Config{
		Max:        30,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|search"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.search.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}), d.SearchHandler.Search)
	api.Get("/products/:id", d.ProductHandler.Detail)
	api.Post("/products/create", owner, d.ProductHandler.Create)
	api.Put("/products/:id", owner, d.ProductHandler.Update)
	api.Delete("/products/:id", owner, d.ProductHandler.Delete)

	// Shops
	api.Get("/shops", d.ShopHandler.List)
	api.Get("/shops/:slug", d.ShopHandler.Storefront)
	api.Post("/shops/create", owner, d.ShopHandler.Create)
	api.Post("/shops/update", owner, d.ShopHandler.Update)
	api.Delete("/shops/:id", owner, d.ShopHandler.Delete)

	// Uploads
	api.Post("/uploads/:kind", owner, d.UploadHandler.Upload)

	// Cart & checkout
	api.Post("/cart/quote", d.CartHandler.Quote)
	api.Get("/cart", d.CartHandler.View)
	api.Post("/cart/items", d.CartHandler.Add)
	api.Put("/cart/items/:productId", d.CartHandler.Set)
	api.Delete("/cart/items/:productId", d.CartHandler.Remove)
	api.Post("/checkout", d.OrderHandler.Checkout)

	// Auth routes (login throttled)
	api.Post("/auth/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many attempts, please try again later"})
		},
	}), d.AuthHandler.Login)
	api.Post("/auth/logout", d.AuthHandler.Logout)

	// Admin
	admin := api.Group("/admin", RequireRole(domain.RoleAdmin))
	admin.Get("/orders", d.AdminHandler.ListOrders)
	admin.Get("/orders/:id", d.AdminHandler.GetOrder)
	admin.Post("/orders/:id/status", d.AdminHandler.UpdateOrderStatus)
	admin.Post("/shipments/estimate", d.AdminHandler.EstimateShipment)
	admin.Post("/shipments", d.AdminHandler.CreateShipment)
	admin.Get("/shipments", d.AdminHandler.ListShipments)
	admin.Post("/shipments/:id/status", d.AdminHandler.UpdateShipmentStatus)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error {
		if err := d.DB.PingContext(c.UserContext()); err != nil {
			applog.Error(c, "health.db", err, nil)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"ok": false})
		}
		return c.JSON(fiber.Map{"ok": true})
	})
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	})
	return app
}
