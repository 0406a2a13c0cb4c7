package repo

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"catrank.dev/backend/internal/model"
	"catrank.dev/backend/internal/repo/selector"
)

type Snapshot struct {
	db *bun.DB

	sel selector.S[model.Snapshot]
}

func NewSnapshot(db *bun.DB) *Snapshot {
	return &Snapshot{
		db:  db,
		sel: selector.New[model.Snapshot](db),
	}
}

func (s *Snapshot) GetSnapshotByID(ctx context.Context, id int64) (*model.Snapshot, error) {
	return s.sel.SelectOne(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("snapshot_id = ?", id)
	})
}

func (s *Snapshot) GetSnapshotByDigest(ctx context.Context, digest string) (*model.Snapshot, error) {
	return s.sel.SelectOne(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("digest = ?", digest).Limit(1)
	})
}

func (s *Snapshot) GetLatestSnapshot(ctx context.Context) (*model.Snapshot, error) {
	return s.sel.SelectOne(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("taken_at DESC, snapshot_id DESC").Limit(1)
	})
}

// GetSnapshotsBetween returns snapshots with start <= taken_at < end, oldest first.
func (s *Snapshot) GetSnapshotsBetween(ctx context.Context, start, end time.Time) ([]*model.Snapshot, error) {
	return s.sel.SelectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("taken_at >= ?", start).Where("taken_at < ?", end).OrderExpr("taken_at ASC")
	})
}

func (s *Snapshot) CountSnapshots(ctx context.Context) (int, error) {
	return s.db.NewSelect().Model((*model.Snapshot)(nil)).Count(ctx)
}

// GetDatasetVersion summarizes the snapshot table in one query.
func (s *Snapshot) GetDatasetVersion(ctx context.Context) (model.DatasetVersion, error) {
	var v model.DatasetVersion
	err := s.db.NewSelect().
		TableExpr("snapshots").
		ColumnExpr("COUNT(*) AS snapshots").
		ColumnExpr("COALESCE(MAX(snapshot_id), 0) AS max_snapshot_id").
		ColumnExpr("MAX(taken_at) AS latest_taken_at").
		Scan(ctx, &v)
	return v, err
}

// CreateSnapshot inserts the snapshot and its observations within tx. The
// observations get the new snapshot id and time.
func (s *Snapshot) CreateSnapshot(ctx context.Context, tx bun.Tx, snapshot *model.Snapshot, observations []*model.Observation) error {
	if _, err := tx.NewInsert().Model(snapshot).Returning("snapshot_id").Exec(ctx); err != nil {
		return err
	}
	if len(observations) == 0 {
		return nil
	}

	for _, o := range observations {
		o.SnapshotID = snapshot.SnapshotID
		o.TakenAt = snapshot.TakenAt
	}
	_, err := tx.NewInsert().Model(&observations).Exec(ctx)
	return err
}
