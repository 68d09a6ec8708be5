package repos

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"marketplace/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

type productRow struct {
	ID            string         `db:"id"`
	SellerID      sql.NullString `db:"seller_id"`
	SellerName    string         `db:"seller_name"`
	SellerSlug    string         `db:"seller_slug"`
	CategoryID    string         `db:"category_id"`
	Title         string         `db:"title"`
	Description   string         `db:"description"`
	ImagesJSON    string         `db:"images_json"`
	Price         int64          `db:"price"`
	OriginalPrice sql.NullInt64  `db:"original_price"`
	Available     bool           `db:"available"`
	Quantity      int64          `db:"quantity"`
	CreatedAt     string         `db:"created_at"`
	UpdatedAt     string         `db:"updated_at"`
}

func (r productRow) toDomain() (domain.Product, error) {
	p := domain.Product{
		ID: r.ID, SellerID: r.SellerID.String, SellerName: r.SellerName, SellerSlug: r.SellerSlug,
		CategoryID: r.CategoryID, Title: r.Title, Description: r.Description,
		Price: r.Price, Available: r.Available, Quantity: r.Quantity,
		CreatedAt: parseTS(r.CreatedAt), UpdatedAt: parseTS(r.UpdatedAt),
	}
	if r.OriginalPrice.Valid {
		v := r.OriginalPrice.Int64
		p.OriginalPrice = &v
	}
	if err := json.Unmarshal([]byte(r.ImagesJSON), &p.Images); err != nil {
		return p, errors.Wrapf(err, "decode images of %s", r.ID)
	}
	return p, nil
}

func toDomainList(rows []productRow) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		p, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

const productSelect = `
  SELECT
    p.id, p.seller_id, COALESCE(s.name,'') AS seller_name, COALESCE(s.slug,'') AS seller_slug,
    p.category_id, p.title, p.description, p.images_json, p.price, p.original_price,
    p.available, p.quantity, p.created_at, p.updated_at
  FROM products p
  LEFT JOIN sellers s ON s.id = p.seller_id`

func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	var row productRow
	if err := r.db.GetContext(ctx, &row, productSelect+` WHERE p.id = ?`, id); err != nil {
		return domain.Product{}, classify(err, "get product")
	}
	return row.toDomain()
}

// GetMany returns the products found among ids, keyed by id.
func (r *ProductRepo) GetMany(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	out := map[string]domain.Product{}
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(productSelect+` WHERE p.id IN (?)`, ids)
	if err != nil {
		return nil, errors.Wrap(err, "build product lookup")
	}
	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, classify(err, "lookup products")
	}
	list, err := toDomainList(rows)
	if err != nil {
		return nil, err
	}
	for _, p := range list {
		out[p.ID] = p
	}
	return out, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type ProductFilter struct {
	Q             string
	CategoryID    string
	SellerID      string
	AvailableOnly bool
	Limit, Offset int
}

func (r *ProductRepo) Search(ctx context.Context, f ProductFilter) ([]domain.Product, error) {
	where := []string{"1 = 1"}
	args := []any{}
	if f.Q != "" {
		where = append(where, `(LOWER(p.title) LIKE ? ESCAPE '\' OR LOWER(p.description) LIKE ? ESCAPE '\')`)
		q := "%" + likeEscaper.Replace(strings.ToLower(f.Q)) + "%"
		args = append(args, q, q)
	}
	if f.CategoryID != "" {
		where = append(where, `p.category_id = ?`)
		args = append(args, f.CategoryID)
	}
	if f.SellerID != "" {
		where = append(where, `p.seller_id = ?`)
		args = append(args, f.SellerID)
	}
	if f.AvailableOnly {
		where = append(where, `p.available = 1`)
	}
	args = append(args, f.Limit, f.Offset)

	var rows []productRow
	err := r.db.SelectContext(ctx, &rows, productSelect+`
  WHERE `+strings.Join(where, " AND ")+`
  ORDER BY p.created_at DESC, p.id
  LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, classify(err, "search products")
	}
	return toDomainList(rows)
}

func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	images, err := json.Marshal(p.Images)
	if err != nil {
		return errors.Wrap(err, "encode images")
	}
	ts := now()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO products(id, seller_id, category_id, title, description, images_json,
		                     price, original_price, available, quantity, created_at, updated_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.SellerID, p.CategoryID, p.Title, p.Description, string(images),
		p.Price, p.OriginalPrice, p.Available, p.Quantity, ts, ts)
	if err != nil {
		return classify(err, "create product")
	}
	p.CreatedAt, p.UpdatedAt = parseTS(ts), parseTS(ts)
	return nil
}

// Update writes p and queues released for deletion from the object store,
// atomically.
func (r *ProductRepo) Update(ctx context.Context, p *domain.Product, released []string) error {
	images, err := json.Marshal(p.Images)
	if err != nil {
		return errors.Wrap(err, "encode images")
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer func() { _ = tx.Rollback() }()

	ts := now()
	res, err := tx.ExecContext(ctx, `
		UPDATE products
		SET category_id = ?, title = ?, description = ?, images_json = ?, price = ?,
		    original_price = ?, available = ?, quantity = ?, updated_at = ?
		WHERE id = ?
	`, p.CategoryID, p.Title, p.Description, string(images), p.Price,
		p.OriginalPrice, p.Available, p.Quantity, ts, p.ID)
	if err != nil {
		return classify(err, "update product")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	if err := enqueueDeletions(ctx, tx, released, "product.update:"+p.ID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit product update")
	}
	p.UpdatedAt = parseTS(ts)
	return nil
}

// Delete removes the row and queues every image for deletion, atomically.
// A row still referenced by order lines yields ErrForeignKey and nothing is
// queued.
func (r *ProductRepo) Delete(ctx context.Context, id string, images []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return classify(err, "delete product")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	if err := enqueueDeletions(ctx, tx, images, "product.delete:"+id); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "commit product delete")
}

// decrementStock subtracts by units if enough stock exists.
func decrementStock(ctx context.Context, ex sqlx.ExecerContext, productID string, by int64) error {
	res, err := ex.ExecContext(ctx, `
		UPDATE products
		SET quantity = quantity - ?
		WHERE id = ? AND quantity >= ? AND available = 1
	`, by, productID, by)
	if err != nil {
		return classify(err, "decrement stock")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.WithMessagef(ErrInsufficientStock, "product %s", productID)
	}
	return nil
}
