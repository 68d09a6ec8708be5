package services

import (
	"context"

	"marketplace/internal/domain"
	"marketplace/internal/repos"
	"marketplace/internal/validate"
)

const maxPageSize = 50

type CatalogService struct {
	Cats  *repos.CategoryRepo
	Prods *repos.ProductRepo
}

func NewCatalogService(cats *repos.CategoryRepo, prods *repos.ProductRepo) *CatalogService {
	return &CatalogService{Cats: cats, Prods: prods}
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.Cats.List(ctx)
}

type SearchQuery struct {
	Q             string
	Category      string
	Seller        string
	AvailableOnly bool
	Page          int
	PageSize      int
}

// Search lists products. A query that fails validation is treated as absent.
func (s *CatalogService) Search(ctx context.Context, q SearchQuery) ([]domain.Product, error) {
	f := repos.ProductFilter{AvailableOnly: q.AvailableOnly}
	if v, ok := validate.Q(q.Q); ok {
		f.Q = v
	}
	if v, ok := validate.ID(q.Category); ok {
		f.CategoryID = v
	}
	if v, ok := validate.ID(q.Seller); ok {
		f.SellerID = v
	}
	f.Limit, f.Offset = paginate(q.Page, q.PageSize)
	return s.Prods.Search(ctx, f)
}

func paginate(page, pageSize int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 12
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return pageSize, (page - 1) * pageSize
}
