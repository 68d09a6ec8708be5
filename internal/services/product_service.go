package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"marketplace/internal/domain"
	"marketplace/internal/events"
	"marketplace/internal/repos"
	"marketplace/internal/validate"
)

// ProductInput is the create/update body. Update ignores SellerID.
type ProductInput struct {
	SellerID      string           `json:"sellerId"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	CategoryID    string           `json:"categoryId"`
	Images        []string         `json:"images"`
	Price         *validate.Amount `json:"price"`
	OriginalPrice *validate.Amount `json:"originalPrice"`
	Available     *bool            `json:"available"`
	Quantity      *validate.Amount `json:"quantity"`
}

type ProductService struct {
	Products   *repos.ProductRepo
	Sellers    *repos.SellerRepo
	Categories *repos.CategoryRepo
	Events     events.Publisher
	// Reaper is kicked after a commit that released images. Optional.
	Reaper *ImageReaper
}

func NewProductService(products *repos.ProductRepo, sellers *repos.SellerRepo, cats *repos.CategoryRepo,
	pub events.Publisher, reaper *ImageReaper) *ProductService {
	return &ProductService{Products: products, Sellers: sellers, Categories: cats, Events: pub, Reaper: reaper}
}

// fields validates everything but the seller and fills p.
func (s *ProductService) fields(ctx context.Context, in ProductInput, p *domain.Product) error {
	var err error
	if p.Title, err = validate.Required("title", in.Title); err != nil {
		return err
	}
	if p.Description, err = validate.Required("description", in.Description); err != nil {
		return err
	}
	if p.CategoryID, err = validate.RequiredID("categoryId", in.CategoryID); err != nil {
		return err
	}
	if p.Images, err = validate.Images(in.Images); err != nil {
		return err
	}
	if in.Price == nil {
		return domain.Invalidf("price is required")
	}
	if p.Price, err = in.Price.NonNegative("price"); err != nil {
		return err
	}
	if in.OriginalPrice != nil {
		op, err := in.OriginalPrice.NonNegative("originalPrice")
		if err != nil {
			return err
		}
		p.OriginalPrice = &op
	}
	if _, err := s.Categories.Get(ctx, p.CategoryID); err != nil {
		return notFound(err, "category")
	}
	return nil
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (domain.Product, error) {
	sellerID, err := validate.RequiredID("sellerId", in.SellerID)
	if err != nil {
		return domain.Product{}, err
	}
	p := domain.Product{ID: uuid.NewString(), SellerID: sellerID, Available: true}
	if err := s.fields(ctx, in, &p); err != nil {
		return domain.Product{}, err
	}
	if in.Available != nil {
		p.Available = *in.Available
	}
	p.Quantity = validate.Quantity(in.Quantity, 0)

	if _, err := s.Sellers.Get(ctx, sellerID); err != nil {
		return domain.Product{}, notFound(err, "seller")
	}
	if err := s.Products.Create(ctx, &p); err != nil {
		return domain.Product{}, err
	}
	created, err := s.Products.Get(ctx, p.ID)
	if err != nil {
		return domain.Product{}, err
	}
	events.Emit(ctx, s.Events, events.New(events.ProductCreated, map[string]any{
		"id": created.ID, "sellerId": created.SellerID, "price": created.Price,
	}))
	return created, nil
}

// Update replaces the editable fields of a product. Images dropped from the
// list are queued for deletion in the same transaction as the row update.
// Absent available, quantity and originalPrice keep their stored values.
func (s *ProductService) Update(ctx context.Context, id string, in ProductInput) (domain.Product, []string, error) {
	id, err := validate.RequiredID("productId", id)
	if err != nil {
		return domain.Product{}, nil, err
	}
	existing, err := s.Products.Get(ctx, id)
	if err != nil {
		return domain.Product{}, nil, notFound(err, "product")
	}

	p := existing
	p.OriginalPrice = nil
	if err := s.fields(ctx, in, &p); err != nil {
		return domain.Product{}, nil, err
	}
	if in.OriginalPrice == nil {
		p.OriginalPrice = existing.OriginalPrice
	}
	if in.Available != nil {
		p.Available = *in.Available
	}
	p.Quantity = validate.Quantity(in.Quantity, existing.Quantity)

	released := ImagesToDelete(existing.Images, p.Images)
	if err := s.Products.Update(ctx, &p, released); err != nil {
		return domain.Product{}, nil, notFound(err, "product")
	}
	if len(released) > 0 {
		s.kick()
	}
	updated, err := s.Products.Get(ctx, id)
	if err != nil {
		return domain.Product{}, nil, err
	}
	events.Emit(ctx, s.Events, events.New(events.ProductUpdated, map[string]any{
		"id": id, "releasedImages": len(released),
	}))
	return updated, released, nil
}

// Delete removes the product and queues all of its images. A product still
// referenced by order lines is a linked-orders conflict and nothing changes.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	id, err := validate.RequiredID("productId", id)
	if err != nil {
		return err
	}
	existing, err := s.Products.Get(ctx, id)
	if err != nil {
		return notFound(err, "product")
	}
	err = s.Products.Delete(ctx, id, existing.Images)
	switch {
	case errors.Is(err, repos.ErrForeignKey):
		return domain.ErrLinkedOrders
	case err != nil:
		return notFound(err, "product")
	}
	s.kick()
	events.Emit(ctx, s.Events, events.New(events.ProductDeleted, map[string]any{
		"id": id, "images": len(existing.Images),
	}))
	return nil
}

func (s *ProductService) Get(ctx context.Context, id string) (domain.Product, error) {
	id, ok := validate.ID(id)
	if !ok {
		return domain.Product{}, domain.NotFoundf("product not found")
	}
	p, err := s.Products.Get(ctx, id)
	if err != nil {
		return domain.Product{}, notFound(err, "product")
	}
	return p, nil
}

func (s *ProductService) kick() {
	if s.Reaper != nil {
		s.Reaper.Kick()
	}
}

// ImagesToDelete is existing minus kept, in the order of existing.
func ImagesToDelete(existing, kept []string) []string {
	keep := make(map[string]struct{}, len(kept))
	for _, u := range kept {
		keep[u] = struct{}{}
	}
	var out []string
	seen := map[string]struct{}{}
	for _, u := range existing {
		if _, ok := keep[u]; ok {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
