package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"marketplace/internal/pricing"
)

// CartRepo keeps a server-side copy of a shopper's cart keyed by session.
type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

func (r *CartRepo) EnsureCart(ctx context.Context, sessionID string) (string, error) {
	var cartID string
	if err := r.db.GetContext(ctx, &cartID, `SELECT id FROM carts WHERE session_id = ?`, sessionID); err == nil {
		return cartID, nil
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO carts(id, session_id, updated_at) VALUES(?, ?, ?)
		ON CONFLICT(session_id) DO NOTHING
	`, sessionID, sessionID, now())
	if err != nil {
		return "", classify(err, "create cart")
	}
	return sessionID, nil
}

// Add increments the line, creating it when absent.
func (r *CartRepo) Add(ctx context.Context, cartID, productID string, qty int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cart_items(cart_id, product_id, quantity, created_at)
		VALUES(?, ?, ?, ?)
		ON CONFLICT(cart_id, product_id) DO UPDATE
		SET quantity = cart_items.quantity + excluded.quantity
	`, cartID, productID, qty, now())
	if err != nil {
		return classify(err, "add cart item")
	}
	return r.touch(ctx, cartID)
}

// Set replaces the quantity; qty <= 0 removes the line.
func (r *CartRepo) Set(ctx context.Context, cartID, productID string, qty int64) error {
	if qty <= 0 {
		return r.Remove(ctx, cartID, productID)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cart_items(cart_id, product_id, quantity, created_at)
		VALUES(?, ?, ?, ?)
		ON CONFLICT(cart_id, product_id) DO UPDATE SET quantity = excluded.quantity
	`, cartID, productID, qty, now())
	if err != nil {
		return classify(err, "set cart item")
	}
	return r.touch(ctx, cartID)
}

func (r *CartRepo) Remove(ctx context.Context, cartID, productID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = ? AND product_id = ?`, cartID, productID)
	if err != nil {
		return classify(err, "remove cart item")
	}
	return r.touch(ctx, cartID)
}

func (r *CartRepo) Lines(ctx context.Context, cartID string) ([]pricing.Line, error) {
	var rows []struct {
		ProductID string `db:"product_id"`
		Quantity  int64  `db:"quantity"`
	}
	if err := r.db.SelectContext(ctx, &rows, `
	  SELECT product_id, quantity
	  FROM cart_items
	  WHERE cart_id = ?
	  ORDER BY rowid
	`, cartID); err != nil {
		return nil, classify(err, "list cart items")
	}
	out := make([]pricing.Line, 0, len(rows))
	for _, row := range rows {
		out = append(out, pricing.Line{ProductID: row.ProductID, Quantity: row.Quantity})
	}
	return out, nil
}

func (r *CartRepo) Clear(ctx context.Context, cartID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = ?`, cartID)
	return classify(err, "clear cart")
}

func (r *CartRepo) touch(ctx context.Context, cartID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE carts SET updated_at = ? WHERE id = ?`, now(), cartID)
	return classify(err, "touch cart")
}
