package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"marketplace/internal/domain"
)

type CategoryRepo struct{ db *sqlx.DB }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	out := []domain.Category{}
	err := r.db.SelectContext(ctx, &out, `
	  SELECT id, label, slug, COALESCE(description,'') AS description
	  FROM categories
	  ORDER BY label
	`)
	return out, classify(err, "list categories")
}

func (r *CategoryRepo) Get(ctx context.Context, id string) (domain.Category, error) {
	var c domain.Category
	err := r.db.GetContext(ctx, &c, `
	  SELECT id, label, slug, COALESCE(description,'') AS description
	  FROM categories
	  WHERE id = ?
	`, id)
	return c, classify(err, "get category")
}
