package services

import (
	"context"

	"marketplace/internal/domain"
	"marketplace/internal/pricing"
	"marketplace/internal/repos"
	"marketplace/internal/validate"
)

type CartService struct {
	Carts *repos.CartRepo
	Prods *repos.ProductRepo
}

func NewCartService(carts *repos.CartRepo, prods *repos.ProductRepo) *CartService {
	return &CartService{Carts: carts, Prods: prods}
}

// Add increments the line for productID by qty (at least 1). The product
// must exist when it is added.
func (s *CartService) Add(ctx context.Context, sessionID, productID string, qty int64) error {
	productID, err := validate.RequiredID("productId", productID)
	if err != nil {
		return err
	}
	if qty < 1 {
		qty = 1
	}
	if qty > pricing.MaxLineQuantity {
		return domain.Invalidf("quantity must not exceed %d", pricing.MaxLineQuantity)
	}
	if _, err := s.Prods.Get(ctx, productID); err != nil {
		return notFound(err, "product")
	}
	cartID, err := s.Carts.EnsureCart(ctx, sessionID)
	if err != nil {
		return err
	}
	return s.Carts.Add(ctx, cartID, productID, qty)
}

// Set replaces the quantity of a line; zero or less removes it.
func (s *CartService) Set(ctx context.Context, sessionID, productID string, qty int64) error {
	productID, err := validate.RequiredID("productId", productID)
	if err != nil {
		return err
	}
	if qty > pricing.MaxLineQuantity {
		return domain.Invalidf("quantity must not exceed %d", pricing.MaxLineQuantity)
	}
	cartID, err := s.Carts.EnsureCart(ctx, sessionID)
	if err != nil {
		return err
	}
	return s.Carts.Set(ctx, cartID, productID, qty)
}

func (s *CartService) Remove(ctx context.Context, sessionID, productID string) error {
	cartID, err := s.Carts.EnsureCart(ctx, sessionID)
	if err != nil {
		return err
	}
	return s.Carts.Remove(ctx, cartID, productID)
}

func (s *CartService) Lines(ctx context.Context, sessionID string) ([]pricing.Line, error) {
	cartID, err := s.Carts.EnsureCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.Carts.Lines(ctx, cartID)
}

func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	cartID, err := s.Carts.EnsureCart(ctx, sessionID)
	if err != nil {
		return err
	}
	return s.Carts.Clear(ctx, cartID)
}

// View prices the session cart against the current catalog.
func (s *CartService) View(ctx context.Context, sessionID string) (pricing.Quote, error) {
	lines, err := s.Lines(ctx, sessionID)
	if err != nil {
		return pricing.Quote{}, err
	}
	return s.Quote(ctx, lines)
}

// Quote prices client-held lines. Unknown product ids are reported in
// Missing and add nothing to the total.
func (s *CartService) Quote(ctx context.Context, lines []pricing.Line) (pricing.Quote, error) {
	catalog, err := s.catalog(ctx, lines)
	if err != nil {
		return pricing.Quote{}, err
	}
	return pricing.Price(lines, catalog)
}

func (s *CartService) catalog(ctx context.Context, lines []pricing.Line) (map[string]domain.Product, error) {
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	return s.Prods.GetMany(ctx, ids)
}
