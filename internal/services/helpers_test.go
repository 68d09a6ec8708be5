package services_test

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"marketplace/internal/domain"
	"marketplace/internal/events"
	"marketplace/internal/repos"
	"marketplace/internal/services"
	"marketplace/internal/storage"
)

type fakeStore struct {
	mu      sync.Mutex
	deleted []string
	fail    map[string]error
}

func (f *fakeStore) Put(_ context.Context, kind storage.Kind, key string, _ io.Reader, _ string) (string, error) {
	return "https://cdn.example.test/" + string(kind) + "/" + key, nil
}

func (f *fakeStore) Delete(_ context.Context, url string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail[url]; err != nil {
		return false, err
	}
	f.deleted = append(f.deleted, url)
	return true, nil
}

func (f *fakeStore) Deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
	return nil
}

func (r *recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type env struct {
	db       *sqlx.DB
	store    *fakeStore
	pub      *recorder
	outbox   *repos.OutboxRepo
	reaper   *services.ImageReaper
	products *services.ProductService
	shops    *services.ShopService
	carts    *services.CartService
	orders   *services.OrderService
	catalog  *services.CatalogService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := repos.OpenDB(":memory:", true)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	e := &env{db: db, store: &fakeStore{}, pub: &recorder{}}
	prodRepo := repos.NewProductRepo(db)
	sellerRepo := repos.NewSellerRepo(db)
	catRepo := repos.NewCategoryRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	e.outbox = repos.NewOutboxRepo(db)
	e.reaper = services.NewImageReaper(e.outbox, e.store, time.Hour)
	e.products = services.NewProductService(prodRepo, sellerRepo, catRepo, e.pub, e.reaper)
	e.shops = services.NewShopService(sellerRepo, prodRepo, e.pub)
	e.carts = services.NewCartService(repos.NewCartRepo(db), prodRepo)
	e.orders = services.NewOrderService(e.carts, orderRepo, orderRepo, nil, e.pub)
	e.catalog = services.NewCatalogService(catRepo, prodRepo)
	return e
}

func contact() domain.Contact {
	return domain.Contact{
		Name: "Awa Koné", Phone: "+225 07 00 00 00", Neighborhood: "Riviera 3", Commune: "Cocody", City: "Abidjan",
	}
}
