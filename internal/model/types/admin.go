package types

import (
	"gopkg.in/guregu/null.v3"
)

type PurgeCacheRequest struct {
	Pairs []PurgeCachePair `json:"pairs" validate:"dive"`
}

type PurgeCachePair struct {
	Name string      `json:"name" validate:"required"`
	Key  null.String `json:"key" swaggertype:"string"`
}

type CollectResponse struct {
	SnapshotID int64  `json:"snapshotId"`
	TakenAt    string `json:"takenAt"`
	Categories int    `json:"categories"`
	Skipped    bool   `json:"skipped"`
}

type ArchiveRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02" required:"true"`
}
