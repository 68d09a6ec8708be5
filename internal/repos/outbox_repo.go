package repos

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// OutboxRepo holds object-store deletions recorded in the same transaction
// as the catalog write that released the objects.
type OutboxRepo struct{ db *sqlx.DB }

func NewOutboxRepo(db *sqlx.DB) *OutboxRepo { return &OutboxRepo{db: db} }

type PendingDeletion struct {
	ID       int64  `db:"id"`
	URL      string `db:"url"`
	Reason   string `db:"reason"`
	Attempts int    `db:"attempts"`
}

func enqueueDeletions(ctx context.Context, ex sqlx.ExecerContext, urls []string, reason string) error {
	ts := now()
	for _, u := range urls {
		if _, err := ex.ExecContext(ctx, `
			INSERT INTO image_deletions(url, reason, created_at) VALUES(?, ?, ?)
		`, u, reason, ts); err != nil {
			return classify(err, "enqueue image deletion")
		}
	}
	return nil
}

// Pending returns, in id order, deletions after afterID that have not
// exhausted maxAttempts.
func (r *OutboxRepo) Pending(ctx context.Context, afterID int64, limit, maxAttempts int) ([]PendingDeletion, error) {
	var out []PendingDeletion
	err := r.db.SelectContext(ctx, &out, `
		SELECT id, url, reason, attempts
		FROM image_deletions
		WHERE id > ? AND attempts < ?
		ORDER BY id
		LIMIT ?
	`, afterID, maxAttempts, limit)
	return out, classify(err, "list pending deletions")
}

func (r *OutboxRepo) Done(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM image_deletions WHERE id = ?`, id)
	return classify(err, "complete deletion")
}

func (r *OutboxRepo) Failed(ctx context.Context, id int64, cause error) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE image_deletions SET attempts = attempts + 1, last_error = ? WHERE id = ?
	`, cause.Error(), id)
	return classify(err, "record deletion failure")
}

func (r *OutboxRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM image_deletions`)
	return n, classify(err, "count deletions")
}
