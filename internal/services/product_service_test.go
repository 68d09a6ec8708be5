package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/internal/domain"
	"marketplace/internal/pricing"
	"marketplace/internal/services"
	"marketplace/internal/validate"
)

func input() services.ProductInput {
	return services.ProductInput{
		SellerID:    "s-adjoua",
		Title:       "T",
		Description: "D",
		CategoryID:  "c-fashion",
		Images:      []string{"u1", "u2"},
		Price:       validate.NewAmount(49990),
		Quantity:    validate.NewAmount(5),
	}
}

func TestCreateProduct(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	p, err := e.products.Create(ctx, input())
	require.NoError(t, err)
	assert.Equal(t, int64(49990), p.Price)
	assert.Equal(t, int64(5), p.Quantity)
	assert.Equal(t, []string{"u1", "u2"}, p.Images)
	assert.True(t, p.Available)
	assert.Nil(t, p.OriginalPrice)
	assert.Equal(t, "Chez Adjoua", p.SellerName)
	assert.Equal(t, "chez-adjoua", p.SellerSlug)
	assert.Contains(t, e.pub.Types(), "product.created")
}

func TestCreateProductRoundsAndDefaults(t *testing.T) {
	e := newEnv(t)
	in := input()
	in.Price = validate.NewAmount(1999.5)
	in.OriginalPrice = validate.NewAmount(2500.4)
	in.Quantity = validate.NewAmount(-3)

	p, err := e.products.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), p.Price)
	require.NotNil(t, p.OriginalPrice)
	assert.Equal(t, int64(2500), *p.OriginalPrice)
	assert.Equal(t, int64(0), p.Quantity)
}

func TestCreateProductValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	before, err := e.catalog.Search(ctx, services.SearchQuery{PageSize: 50})
	require.NoError(t, err)

	cases := map[string]func(*services.ProductInput){
		"one image":       func(in *services.ProductInput) { in.Images = []string{"u1"} },
		"blank image":     func(in *services.ProductInput) { in.Images = []string{"u1", " "} },
		"no title":        func(in *services.ProductInput) { in.Title = "  " },
		"no seller":       func(in *services.ProductInput) { in.SellerID = "" },
		"negative price":  func(in *services.ProductInput) { in.Price = validate.NewAmount(-1) },
		"missing price":   func(in *services.ProductInput) { in.Price = nil },
		"negative origin": func(in *services.ProductInput) { in.OriginalPrice = validate.NewAmount(-5) },
	}
	for name, mut := range cases {
		in := input()
		mut(&in)
		_, err := e.products.Create(ctx, in)
		assert.Equal(t, domain.KindInvalid, domain.KindOf(err), name)
	}

	in := input()
	in.SellerID = "s-nobody"
	_, err = e.products.Create(ctx, in)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	in = input()
	in.CategoryID = "c-nothing"
	_, err = e.products.Create(ctx, in)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	after, err := e.catalog.Search(ctx, services.SearchQuery{PageSize: 50})
	require.NoError(t, err)
	assert.Len(t, after, len(before), "no row written")
}

func TestUpdateReconcilesImages(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	in := input()
	in.Images = []string{"a", "b", "c"}
	p, err := e.products.Create(ctx, in)
	require.NoError(t, err)

	upd := input()
	upd.SellerID = ""
	upd.Images = []string{"d", "b"}
	got, released, err := e.products.Update(ctx, p.ID, upd)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, released)
	assert.Equal(t, []string{"d", "b"}, got.Images)

	n, err := e.outbox.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	res, err := e.reaper.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Deleted)
	assert.ElementsMatch(t, []string{"a", "c"}, e.store.Deleted())

	stored, err := e.products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "b"}, stored.Images)
}

func TestUpdateKeepsOptionalFields(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	upd := input()
	upd.SellerID = ""
	upd.CategoryID = "c-fashion"
	upd.Images = []string{
		"https://cdn.example.test/images/p-wax-01/1.jpg",
		"https://cdn.example.test/images/p-wax-01/2.jpg",
	}
	upd.Quantity = nil
	got, released, err := e.products.Update(ctx, "p-wax-01", upd)
	require.NoError(t, err)
	assert.Empty(t, released)
	assert.Equal(t, int64(20), got.Quantity)
	require.NotNil(t, got.OriginalPrice)
	assert.Equal(t, int64(15000), *got.OriginalPrice)
	assert.Equal(t, "s-adjoua", got.SellerID)
}

func TestUpdateErrors(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, _, err := e.products.Update(ctx, "p-missing", input())
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	in := input()
	in.Images = []string{"only-one"}
	_, _, err = e.products.Update(ctx, "p-wax-01", in)
	assert.Equal(t, domain.KindInvalid, domain.KindOf(err))

	in = input()
	in.CategoryID = "c-gone"
	_, _, err = e.products.Update(ctx, "p-wax-01", in)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	p, err := e.products.Get(ctx, "p-wax-01")
	require.NoError(t, err)
	assert.Len(t, p.Images, 2)
	assert.Equal(t, int64(12000), p.Price)
}

func TestDeleteQueuesAllImages(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	require.NoError(t, e.products.Delete(ctx, "p-phone-01"))
	_, err := e.products.Get(ctx, "p-phone-01")
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	_, err = e.reaper.Drain(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"https://cdn.example.test/images/p-phone-01/1.jpg",
		"https://cdn.example.test/images/p-phone-01/2.jpg",
		"https://cdn.example.test/images/p-phone-01/3.jpg",
	}, e.store.Deleted())

	assert.Equal(t, domain.KindNotFound, domain.KindOf(e.products.Delete(ctx, "p-phone-01")))
}

func TestDeleteWithLinkedOrders(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.orders.Checkout(ctx, "", services.CheckoutInput{
		Lines:   []pricing.Line{{ProductID: "p-attieke-01", Quantity: 1}},
		Contact: contact(),
	})
	require.NoError(t, err)

	err = e.products.Delete(ctx, "p-attieke-01")
	require.ErrorIs(t, err, domain.ErrLinkedOrders)
	assert.Equal(t, "product has linked orders and cannot be deleted", err.Error())

	n, err := e.outbox.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	_, err = e.reaper.Drain(ctx)
	require.NoError(t, err)
	assert.Empty(t, e.store.Deleted())

	_, err = e.products.Get(ctx, "p-attieke-01")
	assert.NoError(t, err)
}

func TestImagesToDelete(t *testing.T) {
	assert.Equal(t, []string{"a", "c"}, services.ImagesToDelete([]string{"a", "b", "c"}, []string{"b", "d"}))
	assert.Empty(t, services.ImagesToDelete([]string{"a", "b"}, []string{"b", "a"}))
	assert.Equal(t, []string{"a"}, services.ImagesToDelete([]string{"a", "a"}, nil))
}
