package model

import (
	"time"

	"github.com/uptrace/bun"

	"catrank.dev/backend/internal/core/analytics"
)

type Observation struct {
	bun.BaseModel `bun:"observations,alias:ob"`

	ObservationID int64 `bun:",pk,autoincrement" json:"id"`
	SnapshotID    int64 `bun:"snapshot_id,notnull" json:"snapshotId"`
	// TakenAt mirrors the owning snapshot so reads skip the join.
	TakenAt      time.Time `bun:"taken_at,notnull" json:"takenAt"`
	Rank         int       `bun:"rank,notnull" json:"rank"`
	CategoryName string    `bun:"category_name,notnull" json:"name"`
	Streamers    int       `bun:"streamers,notnull" json:"streamers"`
	Viewers      int       `bun:"viewers,notnull" json:"viewers"`
}

func (o *Observation) Row() analytics.Row {
	return analytics.Row{
		Rank:         o.Rank,
		CategoryName: o.CategoryName,
		Streamers:    o.Streamers,
		Viewers:      o.Viewers,
	}
}

// Derive turns stored rows into the analytics observation set.
func Derive(rows []*Observation, guard analytics.ZeroGuard) []analytics.Observation {
	obs := make([]analytics.Observation, len(rows))
	for i, r := range rows {
		obs[i] = analytics.Derive(r.Row(), r.TakenAt, guard)
	}
	return obs
}
