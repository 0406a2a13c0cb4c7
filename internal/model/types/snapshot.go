package types

import (
	"time"

	"gopkg.in/guregu/null.v3"
)

type SnapshotRow struct {
	Rank      null.Int    `json:"rank" validate:"required,min=1" swaggertype:"integer" required:"true" example:"1"`
	Name      null.String `json:"name" validate:"required,notblank,max=256" swaggertype:"string" required:"true" example:"Just Chatting"`
	Streamers null.Int    `json:"streamers" validate:"required,min=0" swaggertype:"integer" required:"true" example:"3000"`
	Viewers   null.Int    `json:"viewers" validate:"required,min=0" swaggertype:"integer" required:"true" example:"300000"`
}

type SnapshotIngestRequest struct {
	// TakenAt is when the ranking was captured. Defaults to the time the request is received.
	TakenAt *time.Time     `json:"takenAt,omitempty" example:"2024-03-09T18:30:00Z"`
	Source  string         `json:"source" validate:"omitempty,printascii,max=64" example:"my-collector"`
	Rows    []*SnapshotRow `json:"rows" validate:"required,min=1,max=1000,dive,required" required:"true"`
}

type SnapshotIngestResponse struct {
	TaskID string `json:"taskId" example:"01HRJ8Y0V4Q6N7Z9K3M2P1X5WB"`
}

// SnapshotIngestTask is the message carried on the ingestion stream.
type SnapshotIngestTask struct {
	TaskID     string                 `json:"taskId"`
	ReceivedAt int64                  `json:"receivedAt"`
	Request    *SnapshotIngestRequest `json:"request"`
}
