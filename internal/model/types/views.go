package types

import (
	"time"

	"gopkg.in/guregu/null.v3"

	"catrank.dev/backend/internal/core/analytics"
)

// CategoryView is a summary row with its labels resolved for display.
type CategoryView struct {
	Name            string  `json:"name"`
	Count           int     `json:"count"`
	ViewerSum       int     `json:"viewerSum"`
	ViewerMean      float64 `json:"viewerMean"`
	ViewerMax       int     `json:"viewerMax"`
	ViewerStdDev    float64 `json:"viewerStdDev"`
	CompetitionMean float64 `json:"competitionMean"`
	ViewerDelta     int     `json:"viewerDelta"`
	StreamerDelta   int     `json:"streamerDelta"`
	RankDelta       int     `json:"rankDelta"`
	GrowthRate      float64 `json:"growthRate"`
	GrowthScore     float64 `json:"growthScore"`

	MarketType  analytics.MarketType `json:"marketType"`
	MarketLabel string               `json:"marketLabel"`
	GrowthType  analytics.GrowthType `json:"growthType"`
	GrowthLabel string               `json:"growthLabel"`

	LatestRank      int       `json:"latestRank"`
	LatestViewers   int       `json:"latestViewers"`
	LatestStreamers int       `json:"latestStreamers"`
	FirstSeen       time.Time `json:"firstSeen"`
	LastSeen        time.Time `json:"lastSeen"`
	PeakViewers     int       `json:"peakViewers"`
	PeakAt          time.Time `json:"peakAt"`
}

type CategoryDetail struct {
	*CategoryView
	Series []analytics.Observation `json:"series"`
}

type LatestResponse struct {
	SnapshotTime null.Time               `json:"snapshotTime" swaggertype:"string"`
	Metric       analytics.Metric        `json:"metric"`
	Rows         []analytics.Observation `json:"rows"`
}
