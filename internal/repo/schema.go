package repo

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"catrank.dev/backend/internal/model"
)

// EnsureSchema creates the tables and indexes when they are missing.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewCreateTable().Model((*model.Snapshot)(nil)).IfNotExists().Exec(ctx); err != nil {
			return errors.Wrap(err, "create snapshots")
		}
		if _, err := tx.NewCreateTable().
			Model((*model.Observation)(nil)).
			IfNotExists().
			ForeignKey(`("snapshot_id") REFERENCES "snapshots" ("snapshot_id") ON DELETE CASCADE`).
			Exec(ctx); err != nil {
			return errors.Wrap(err, "create observations")
		}

		indexes := []struct {
			model   any
			name    string
			columns []string
			unique  bool
		}{
			{(*model.Snapshot)(nil), "idx_snapshots_taken_at", []string{"taken_at"}, false},
			{(*model.Snapshot)(nil), "idx_snapshots_digest", []string{"digest"}, true},
			{(*model.Observation)(nil), "idx_observations_identity", []string{"category_name", "taken_at"}, true},
			{(*model.Observation)(nil), "idx_observations_taken_at", []string{"taken_at"}, false},
		}
		for _, idx := range indexes {
			q := tx.NewCreateIndex().Model(idx.model).Index(idx.name).Column(idx.columns...).IfNotExists()
			if idx.unique {
				q = q.Unique()
			}
			if _, err := q.Exec(ctx); err != nil {
				return errors.Wrap(err, idx.name)
			}
		}
		return nil
	})
}
