package handlers

import (
	"github.com/jmoiron/sqlx"

	"marketplace/internal/auth"
	"marketplace/internal/config"
	"marketplace/internal/domain"
	"marketplace/internal/events"
	"marketplace/internal/repos"
	"marketplace/internal/services"
	"marketplace/internal/storage"
)

type Deps struct {
	DB     *sqlx.DB
	Auth   *services.AuthService
	Reaper *services.ImageReaper

	AuthHandler     *AuthHandler
	CategoryHandler *CategoryHandler
	ProductHandler  *ProductHandler
	SearchHandler   *SearchHandler
	ShopHandler     *ShopHandler
	CartHandler     *CartHandler
	OrderHandler    *OrderHandler
	AdminHandler    *AdminHandler
	UploadHandler   *UploadHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, store storage.ObjectStore, pub events.Publisher) (*Deps, error) {
	tokens, err := auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return nil, err
	}

	catRepo := repos.NewCategoryRepo(db)
	prodRepo := repos.NewProductRepo(db)
	sellerRepo := repos.NewSellerRepo(db)
	cartRepo := repos.NewCartRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	userRepo := repos.NewUserRepo(db)
	outboxRepo := repos.NewOutboxRepo(db)

	machine := domain.NewStatusMachine(nil)
	reaper := services.NewImageReaper(outboxRepo, store, cfg.ReaperInterval)
	authSvc := services.NewAuthService(userRepo, tokens)
	catalogSvc := services.NewCatalogService(catRepo, prodRepo)
	productSvc := services.NewProductService(prodRepo, sellerRepo, catRepo, pub, reaper)
	shopSvc := services.NewShopService(sellerRepo, prodRepo, pub)
	cartSvc := services.NewCartService(cartRepo, prodRepo)
	orderSvc := services.NewOrderService(cartSvc, orderRepo, orderRepo, machine, pub)
	shipmentSvc := services.NewShipmentService(machine)

	return &Deps{
		DB:              db,
		Auth:            authSvc,
		Reaper:          reaper,
		AuthHandler:     &AuthHandler{Auth: authSvc},
		CategoryHandler: &CategoryHandler{Catalog: catalogSvc},
		ProductHandler:  &ProductHandler{Products: productSvc},
		SearchHandler:   &SearchHandler{Catalog: catalogSvc},
		ShopHandler:     &ShopHandler{Shops: shopSvc},
		CartHandler:     &CartHandler{Cart: cartSvc},
		OrderHandler:    &OrderHandler{Order: orderSvc},
		AdminHandler:    &AdminHandler{Orders: orderSvc, Shipments: shipmentSvc},
		UploadHandler:   &UploadHandler{Store: store},
	}, nil
}
