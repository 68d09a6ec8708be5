package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"marketplace/internal/domain"
	"marketplace/internal/events"
	"marketplace/internal/repos"
	"marketplace/internal/validate"
)

type ShopCreate struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ShopUpdate fields are optional; at least one of Name and Slug must be set.
type ShopUpdate struct {
	ID   string  `json:"id"`
	Name *string `json:"name"`
	Slug *string `json:"slug"`
}

type ShopService struct {
	Sellers  *repos.SellerRepo
	Products *repos.ProductRepo
	Events   events.Publisher
}

func NewShopService(sellers *repos.SellerRepo, products *repos.ProductRepo, pub events.Publisher) *ShopService {
	return &ShopService{Sellers: sellers, Products: products, Events: pub}
}

func normSlug(raw string) (string, error) {
	slug := validate.Slug(raw)
	if slug == "" {
		return "", domain.Invalidf("slug must contain letters or digits")
	}
	return slug, nil
}

// slugErr maps a unique-index violation to the slug conflict.
func slugErr(err error) error {
	if errors.Is(err, repos.ErrDuplicate) {
		return domain.ErrSlugTaken
	}
	return err
}

func (s *ShopService) Create(ctx context.Context, in ShopCreate) (domain.Seller, error) {
	name, err := validate.Required("name", in.Name)
	if err != nil {
		return domain.Seller{}, err
	}
	src := in.Slug
	if strings.TrimSpace(src) == "" {
		src = name
	}
	slug, err := normSlug(src)
	if err != nil {
		return domain.Seller{}, err
	}
	seller := domain.Seller{ID: uuid.NewString(), Name: name, Slug: slug}
	if err := s.Sellers.Create(ctx, &seller); err != nil {
		return domain.Seller{}, slugErr(err)
	}
	events.Emit(ctx, s.Events, events.New(events.ShopCreated, map[string]any{"id": seller.ID, "slug": slug}))
	return seller, nil
}

// Update renames a seller and/or changes its slug. An explicit slug must be
// free among other sellers. A name-only update moves the slug to one derived
// from the new name when that slug is free or already this seller's.
func (s *ShopService) Update(ctx context.Context, in ShopUpdate) (domain.Seller, error) {
	id, err := validate.RequiredID("id", in.ID)
	if err != nil {
		return domain.Seller{}, err
	}
	if in.Name == nil && in.Slug == nil {
		return domain.Seller{}, domain.Invalidf("nothing to update")
	}
	seller, err := s.Sellers.Get(ctx, id)
	if err != nil {
		return domain.Seller{}, notFound(err, "shop")
	}

	if in.Name != nil {
		if seller.Name, err = validate.Required("name", *in.Name); err != nil {
			return domain.Seller{}, err
		}
	}

	switch {
	case in.Slug != nil:
		slug, err := normSlug(*in.Slug)
		if err != nil {
			return domain.Seller{}, err
		}
		free, err := s.slugFreeFor(ctx, slug, id)
		if err != nil {
			return domain.Seller{}, err
		}
		if !free {
			return domain.Seller{}, domain.ErrSlugTaken
		}
		seller.Slug = slug
	default:
		derived := validate.Slug(seller.Name)
		if derived != "" {
			free, err := s.slugFreeFor(ctx, derived, id)
			if err != nil {
				return domain.Seller{}, err
			}
			if free {
				seller.Slug = derived
			}
		}
	}

	// The unique index settles races between the check above and the write.
	if err := s.Sellers.Update(ctx, &seller); err != nil {
		return domain.Seller{}, notFound(slugErr(err), "shop")
	}
	events.Emit(ctx, s.Events, events.New(events.ShopUpdated, map[string]any{"id": id, "slug": seller.Slug}))
	return seller, nil
}

// slugFreeFor reports whether slug is unused or owned by sellerID.
func (s *ShopService) slugFreeFor(ctx context.Context, slug, sellerID string) (bool, error) {
	owner, err := s.Sellers.BySlug(ctx, slug)
	if errors.Is(err, repos.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return owner.ID == sellerID, nil
}

// Delete removes the seller; its products are kept without a seller.
func (s *ShopService) Delete(ctx context.Context, id string) error {
	id, err := validate.RequiredID("id", id)
	if err != nil {
		return err
	}
	if err := s.Sellers.Delete(ctx, id); err != nil {
		return notFound(err, "shop")
	}
	events.Emit(ctx, s.Events, events.New(events.ShopDeleted, map[string]any{"id": id}))
	return nil
}

func (s *ShopService) List(ctx context.Context) ([]domain.Seller, error) {
	return s.Sellers.List(ctx)
}

type Storefront struct {
	Shop     domain.Seller    `json:"shop"`
	Products []domain.Product `json:"products"`
}

// Storefront returns the shop behind slug with its available products.
func (s *ShopService) Storefront(ctx context.Context, slug string, page, pageSize int) (Storefront, error) {
	seller, err := s.Sellers.BySlug(ctx, validate.Slug(slug))
	if err != nil {
		return Storefront{}, notFound(err, "shop")
	}
	limit, offset := paginate(page, pageSize)
	products, err := s.Products.Search(ctx, repos.ProductFilter{
		SellerID: seller.ID, AvailableOnly: true, Limit: limit, Offset: offset,
	})
	if err != nil {
		return Storefront{}, err
	}
	return Storefront{Shop: seller, Products: products}, nil
}
