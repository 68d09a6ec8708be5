package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/internal/domain"
	"marketplace/internal/services"
)

func strp(s string) *string { return &s }

func TestCreateShop(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	s, err := e.shops.Create(ctx, services.ShopCreate{Name: "Maquis Élégance"})
	require.NoError(t, err)
	assert.Equal(t, "maquis-elegance", s.Slug)

	_, err = e.shops.Create(ctx, services.ShopCreate{Name: "Other", Slug: "Chez  Adjoua!"})
	assert.ErrorIs(t, err, domain.ErrSlugTaken)

	_, err = e.shops.Create(ctx, services.ShopCreate{Name: "  "})
	assert.Equal(t, domain.KindInvalid, domain.KindOf(err))

	_, err = e.shops.Create(ctx, services.ShopCreate{Name: "---"})
	assert.Equal(t, domain.KindInvalid, domain.KindOf(err))
}

func TestUpdateShopSlug(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.shops.Update(ctx, services.ShopUpdate{ID: "s-koffi", Slug: strp("chez-adjoua")})
	assert.ErrorIs(t, err, domain.ErrSlugTaken)

	s, err := e.shops.Update(ctx, services.ShopUpdate{ID: "s-adjoua", Slug: strp("Chez Adjoua")})
	require.NoError(t, err, "own slug is fine")
	assert.Equal(t, "chez-adjoua", s.Slug)

	s, err = e.shops.Update(ctx, services.ShopUpdate{ID: "s-koffi", Slug: strp("Koffi Tech")})
	require.NoError(t, err)
	assert.Equal(t, "koffi-tech", s.Slug)
	assert.Equal(t, "Koffi Électronique", s.Name)

	_, err = e.shops.Update(ctx, services.ShopUpdate{ID: "s-koffi", Slug: strp("!!!")})
	assert.Equal(t, domain.KindInvalid, domain.KindOf(err))
}

func TestUpdateShopNameOnly(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	// derived slug is taken by another seller: name changes, slug stays
	s, err := e.shops.Update(ctx, services.ShopUpdate{ID: "s-koffi", Name: strp("Chez Adjoua")})
	require.NoError(t, err)
	assert.Equal(t, "Chez Adjoua", s.Name)
	assert.Equal(t, "koffi-electronique", s.Slug)

	// derived slug is free: it is applied
	s, err = e.shops.Update(ctx, services.ShopUpdate{ID: "s-koffi", Name: strp("Koffi & Fils")})
	require.NoError(t, err)
	assert.Equal(t, "koffi-fils", s.Slug)

	stored, err := e.shops.Storefront(ctx, "koffi-fils", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, "s-koffi", stored.Shop.ID)
	require.Len(t, stored.Products, 1)
	assert.Equal(t, "koffi-fils", stored.Products[0].SellerSlug)
}

func TestUpdateShopErrors(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.shops.Update(ctx, services.ShopUpdate{ID: "s-none", Name: strp("X")})
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	_, err = e.shops.Update(ctx, services.ShopUpdate{ID: "s-koffi"})
	assert.Equal(t, domain.KindInvalid, domain.KindOf(err))

	_, err = e.shops.Update(ctx, services.ShopUpdate{Name: strp("X")})
	assert.Equal(t, domain.KindInvalid, domain.KindOf(err))
}

func TestDeleteShopOrphansProducts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	require.NoError(t, e.shops.Delete(ctx, "s-koffi"))
	p, err := e.products.Get(ctx, "p-phone-01")
	require.NoError(t, err)
	assert.Empty(t, p.SellerID)
	assert.Empty(t, p.SellerName)

	_, err = e.shops.Storefront(ctx, "koffi-electronique", 1, 10)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	assert.Equal(t, domain.KindNotFound, domain.KindOf(e.shops.Delete(ctx, "s-koffi")))
	assert.Contains(t, e.pub.Types(), "shop.deleted")
}
