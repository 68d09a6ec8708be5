package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"marketplace/internal/domain"
)

type SellerRepo struct{ db *sqlx.DB }

func NewSellerRepo(db *sqlx.DB) *SellerRepo { return &SellerRepo{db: db} }

type sellerRow struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	Slug      string `db:"slug"`
	CreatedAt string `db:"created_at"`
	UpdatedAt string `db:"updated_at"`
}

func (r sellerRow) toDomain() domain.Seller {
	return domain.Seller{
		ID: r.ID, Name: r.Name, Slug: r.Slug,
		CreatedAt: parseTS(r.CreatedAt), UpdatedAt: parseTS(r.UpdatedAt),
	}
}

const sellerCols = `id, name, slug, created_at, updated_at`

func (r *SellerRepo) Get(ctx context.Context, id string) (domain.Seller, error) {
	var row sellerRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+sellerCols+` FROM sellers WHERE id = ?`, id); err != nil {
		return domain.Seller{}, classify(err, "get seller")
	}
	return row.toDomain(), nil
}

func (r *SellerRepo) BySlug(ctx context.Context, slug string) (domain.Seller, error) {
	var row sellerRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+sellerCols+` FROM sellers WHERE slug = ?`, slug); err != nil {
		return domain.Seller{}, classify(err, "get seller by slug")
	}
	return row.toDomain(), nil
}

func (r *SellerRepo) List(ctx context.Context) ([]domain.Seller, error) {
	var rows []sellerRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+sellerCols+` FROM sellers ORDER BY name`); err != nil {
		return nil, classify(err, "list sellers")
	}
	out := make([]domain.Seller, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// Create inserts s. A taken slug surfaces as ErrDuplicate from the unique index.
func (r *SellerRepo) Create(ctx context.Context, s *domain.Seller) error {
	ts := now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sellers(id, name, slug, created_at, updated_at)
		VALUES(?, ?, ?, ?, ?)
	`, s.ID, s.Name, s.Slug, ts, ts)
	if err != nil {
		return classify(err, "create seller")
	}
	s.CreatedAt, s.UpdatedAt = parseTS(ts), parseTS(ts)
	return nil
}

func (r *SellerRepo) Update(ctx context.Context, s *domain.Seller) error {
	ts := now()
	res, err := r.db.ExecContext(ctx, `UPDATE sellers SET name = ?, slug = ?, updated_at = ? WHERE id = ?`,
		s.Name, s.Slug, ts, s.ID)
	if err != nil {
		return classify(err, "update seller")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	s.UpdatedAt = parseTS(ts)
	return nil
}

// Delete removes the seller. Its products stay, with seller_id set to NULL.
func (r *SellerRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sellers WHERE id = ?`, id)
	if err != nil {
		return classify(err, "delete seller")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
