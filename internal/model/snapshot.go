package model

import (
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// Snapshot is one capture of the ranked category list.
type Snapshot struct {
	bun.BaseModel `bun:"snapshots,alias:sn"`

	SnapshotID int64     `bun:",pk,autoincrement" json:"id"`
	TakenAt    time.Time `bun:"taken_at,notnull" json:"takenAt"`
	Source     string    `bun:"source,notnull" json:"source"`
	RowCount   int       `bun:"row_count,notnull" json:"rowCount"`
	// Digest is the xxh3 hash of the rows and dedupes repeated ingestion.
	Digest    string    `bun:"digest,notnull" json:"digest"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`

	Observations []*Observation `bun:"rel:has-many,join:snapshot_id=snapshot_id" json:"observations,omitempty"`
}

// DatasetVersion identifies the stored snapshot set. Backfilling an older
// snapshot keeps LatestTakenAt but moves Snapshots and MaxSnapshotID.
type DatasetVersion struct {
	Snapshots     int          `bun:"snapshots"`
	MaxSnapshotID int64        `bun:"max_snapshot_id"`
	LatestTakenAt bun.NullTime `bun:"latest_taken_at"`
}

func (v DatasetVersion) Empty() bool {
	return v.Snapshots == 0
}

// CacheKey changes whenever a snapshot is stored, whatever its time.
func (v DatasetVersion) CacheKey() string {
	return fmt.Sprintf("%d.%d.%d", v.LatestTakenAt.Unix(), v.Snapshots, v.MaxSnapshotID)
}
