package repos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"marketplace/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

type orderRow struct {
	ID           string          `db:"id"`
	Name         string          `db:"customer_name"`
	Phone        string          `db:"phone"`
	Neighborhood string          `db:"neighborhood"`
	Commune      string          `db:"commune"`
	City         string          `db:"city"`
	Latitude     sql.NullFloat64 `db:"latitude"`
	Longitude    sql.NullFloat64 `db:"longitude"`
	Total        int64           `db:"total"`
	Status       string          `db:"status"`
	CreatedAt    string          `db:"created_at"`
	UpdatedAt    string          `db:"updated_at"`
}

func (r orderRow) toDomain() domain.Order {
	o := domain.Order{
		ID: r.ID,
		Contact: domain.Contact{
			Name: r.Name, Phone: r.Phone, Neighborhood: r.Neighborhood, Commune: r.Commune, City: r.City,
		},
		Total:     r.Total,
		Status:    domain.Status(r.Status),
		CreatedAt: parseTS(r.CreatedAt),
		UpdatedAt: parseTS(r.UpdatedAt),
	}
	if r.Latitude.Valid && r.Longitude.Valid {
		lat, lng := r.Latitude.Float64, r.Longitude.Float64
		o.Contact.Latitude, o.Contact.Longitude = &lat, &lng
	}
	return o
}

const orderCols = `id, customer_name, phone, neighborhood, commune, city, latitude, longitude,
	total, status, created_at, updated_at`

// Place inserts the order with its lines and takes the ordered units out of
// stock in one transaction. ErrInsufficientStock aborts everything.
func (r *OrderRepo) Place(ctx context.Context, o *domain.Order) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer func() { _ = tx.Rollback() }()

	ts := now()
	c := o.Contact
	if _, err := tx.ExecContext(ctx, `
	  INSERT INTO orders
	    (id, customer_name, phone, neighborhood, commune, city, latitude, longitude, total, status, created_at, updated_at)
	  VALUES
	    (?,  ?,             ?,     ?,            ?,       ?,    ?,        ?,         ?,     ?,      ?,          ?)
	`, o.ID, c.Name, c.Phone, c.Neighborhood, c.Commune, c.City, c.Latitude, c.Longitude,
		o.Total, string(o.Status), ts, ts); err != nil {
		return classify(err, "insert order")
	}

	for _, it := range o.Items {
		if err := decrementStock(ctx, tx, it.ProductID, it.Quantity); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
		  INSERT INTO order_items(order_id, product_id, title, quantity, unit_price, line_total)
		  VALUES(?, ?, ?, ?, ?, ?)
		`, o.ID, it.ProductID, it.Title, it.Quantity, it.UnitPrice, it.LineTotal); err != nil {
			return classify(err, "insert order item")
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit order")
	}
	o.CreatedAt, o.UpdatedAt = parseTS(ts), parseTS(ts)
	return nil
}

func (r *OrderRepo) Get(ctx context.Context, id string) (domain.Order, error) {
	var row orderRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+orderCols+` FROM orders WHERE id = ?`, id); err != nil {
		return domain.Order{}, classify(err, "get order")
	}
	o := row.toDomain()
	o.Items = []domain.OrderItem{}
	if err := r.db.SelectContext(ctx, &o.Items, `
		SELECT product_id, title, quantity, unit_price, line_total
		FROM order_items
		WHERE order_id = ?
		ORDER BY title
	`, id); err != nil {
		return domain.Order{}, classify(err, "get order items")
	}
	return o, nil
}

// ListLatest returns order headers, newest first. Items are not loaded.
func (r *OrderRepo) ListLatest(ctx context.Context, limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []orderRow
	if err := r.db.SelectContext(ctx, &rows, `
		SELECT `+orderCols+`
		FROM orders
		ORDER BY created_at DESC
		LIMIT ?
	`, limit); err != nil {
		return nil, classify(err, "list orders")
	}
	out := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), now(), id)
	if err != nil {
		return classify(err, "update order status")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
