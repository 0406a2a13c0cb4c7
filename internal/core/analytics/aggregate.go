package analytics

import (
	"sort"

	"github.com/ahmetb/go-linq/v3"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"catrank.dev/backend/internal/util"
)

var ErrDuplicateObservation = errors.New("duplicate observation")

// CategorySummary describes one category across every snapshot it appears in.
type CategorySummary struct {
	CategoryName string `json:"name"`

	First Observation `json:"first"`
	Last  Observation `json:"last"`
	// Peak is the observation with the most viewers, the earliest one on ties.
	Peak Observation `json:"peak"`

	Count           int     `json:"count"`
	ViewerSum       int     `json:"viewerSum"`
	ViewerMean      float64 `json:"viewerMean"`
	ViewerMax       int     `json:"viewerMax"`
	ViewerStdDev    float64 `json:"viewerStdDev"`
	CompetitionMean float64 `json:"competitionMean"`

	ViewerDelta   int `json:"viewerDelta"`
	StreamerDelta int `json:"streamerDelta"`
	// RankDelta is positive when the category climbed.
	RankDelta   int     `json:"rankDelta"`
	GrowthRate  float64 `json:"growthRate"`
	GrowthScore float64 `json:"growthScore"`

	MarketType MarketType `json:"marketType"`
	GrowthType GrowthType `json:"growthType"`
}

// GroupSeries partitions obs by category. Every series is ordered by snapshot
// time ascending, observations sharing a time keep their arrival order.
func GroupSeries(obs []Observation) map[string][]Observation {
	var groups []linq.Group
	linq.From(obs).
		GroupByT(
			func(o Observation) string { return o.CategoryName },
			func(o Observation) Observation { return o },
		).
		ToSlice(&groups)

	series := make(map[string][]Observation, len(groups))
	for _, group := range groups {
		s := make([]Observation, 0, len(group.Group))
		for _, el := range group.Group {
			s = append(s, el.(Observation))
		}
		sortByTime(s)
		series[group.Key.(string)] = s
	}
	return series
}

// Series returns the time-ordered observations of a single category, or an
// empty slice when the category never appears.
func Series(obs []Observation, categoryName string) []Observation {
	s := lo.Filter(obs, func(o Observation, _ int) bool {
		return o.CategoryName == categoryName
	})
	sortByTime(s)
	return s
}

func sortByTime(s []Observation) {
	sort.SliceStable(s, func(i, j int) bool {
		return s[i].SnapshotTime.Before(s[j].SnapshotTime)
	})
}

// Aggregate builds the classified summary table, ordered by category name.
// An empty obs yields an empty table.
func Aggregate(obs []Observation, policy Policy) ([]*CategorySummary, error) {
	series := GroupSeries(obs)
	names := lo.Keys(series)
	sort.Strings(names)

	summaries := make([]*CategorySummary, 0, len(names))
	for _, name := range names {
		s := series[name]
		if err := checkDuplicates(s); err != nil {
			return nil, err
		}
		summaries = append(summaries, policy.Classify(summarize(s)))
	}
	return summaries, nil
}

// series must be sorted by time
func checkDuplicates(series []Observation) error {
	for i := 1; i < len(series); i++ {
		if series[i].SnapshotTime.Equal(series[i-1].SnapshotTime) {
			return errors.Wrapf(ErrDuplicateObservation, "category %q at %s",
				series[i].CategoryName, series[i].SnapshotTime.Format("2006-01-02 15:04:05"))
		}
	}
	return nil
}

// summarize fills the descriptive fields from a sorted, non-empty series.
func summarize(series []Observation) *CategorySummary {
	first := series[0]
	last := series[len(series)-1]

	peak := first
	viewers := make([]int, len(series))
	competition := make([]float64, len(series))
	for i, o := range series {
		viewers[i] = o.Viewers
		competition[i] = o.CompetitionIndex
		if o.Viewers > peak.Viewers {
			peak = o
		}
	}
	stats := util.CalcStatsBundle(viewers)

	return &CategorySummary{
		CategoryName:    first.CategoryName,
		First:           first,
		Last:            last,
		Peak:            peak,
		Count:           stats.N,
		ViewerSum:       lo.Sum(viewers),
		ViewerMean:      stats.Avg,
		ViewerMax:       peak.Viewers,
		ViewerStdDev:    stats.StdDev,
		CompetitionMean: util.Mean(competition),
		ViewerDelta:     last.Viewers - first.Viewers,
		StreamerDelta:   last.Streamers - first.Streamers,
		RankDelta:       first.Rank - last.Rank,
	}
}
