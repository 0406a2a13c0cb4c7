package repo

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"catrank.dev/backend/internal/model"
	"catrank.dev/backend/internal/repo/selector"
)

type Observation struct {
	db *bun.DB

	sel selector.S[model.Observation]
}

func NewObservation(db *bun.DB) *Observation {
	return &Observation{
		db:  db,
		sel: selector.New[model.Observation](db),
	}
}

// GetObservationsSince returns every observation taken at or after since,
// ordered by time then rank. A zero since returns the whole history.
func (r *Observation) GetObservationsSince(ctx context.Context, since time.Time) ([]*model.Observation, error) {
	return r.sel.SelectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		if !since.IsZero() {
			q = q.Where("taken_at >= ?", since)
		}
		return q.OrderExpr("taken_at ASC, rank ASC")
	})
}

func (r *Observation) GetObservationsBySnapshotID(ctx context.Context, snapshotID int64) ([]*model.Observation, error) {
	return r.sel.SelectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("snapshot_id = ?", snapshotID).OrderExpr("rank ASC")
	})
}

// GetObservationsByCategory matches the category name exactly.
func (r *Observation) GetObservationsByCategory(ctx context.Context, name string) ([]*model.Observation, error) {
	return r.sel.SelectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("category_name = ?", name).OrderExpr("taken_at ASC")
	})
}

func (r *Observation) ListCategoryNames(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.NewSelect().
		Model((*model.Observation)(nil)).
		ColumnExpr("DISTINCT category_name").
		OrderExpr("category_name ASC").
		Scan(ctx, &names)
	return names, err
}
