package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"catrank.dev/backend/internal/util"
)

var ErrUnknownMetric = errors.New("unknown metric")

// Metric is a per-observation value that can be ranked and charted.
type Metric string

const (
	MetricViewers          Metric = "viewers"
	MetricStreamers        Metric = "streamers"
	MetricCompetitionIndex Metric = "competition_index"
)

func ParseMetric(s string) (Metric, error) {
	switch m := Metric(strings.ToLower(s)); m {
	case "":
		return MetricViewers, nil
	case MetricViewers, MetricStreamers, MetricCompetitionIndex:
		return m, nil
	default:
		return "", errors.Wrapf(ErrUnknownMetric, "%q", s)
	}
}

func (m Metric) Value(o Observation) float64 {
	switch m {
	case MetricStreamers:
		return float64(o.Streamers)
	case MetricCompetitionIndex:
		return o.CompetitionIndex
	default:
		return float64(o.Viewers)
	}
}

// LatestSnapshotTime returns the greatest snapshot time in obs. ok is false for an empty obs.
func LatestSnapshotTime(obs []Observation) (latest time.Time, ok bool) {
	for _, o := range obs {
		if !ok || o.SnapshotTime.After(latest) {
			latest = o.SnapshotTime
			ok = true
		}
	}
	return latest, ok
}

// SnapshotAt returns the observations captured at t.
func SnapshotAt(obs []Observation, t time.Time) []Observation {
	return lo.Filter(obs, func(o Observation, _ int) bool {
		return o.SnapshotTime.Equal(t)
	})
}

// TopAtLatest ranks the latest snapshot by metric, highest first, ties by
// name, keeping at most n rows (n <= 0 keeps all).
func TopAtLatest(obs []Observation, metric Metric, n int) []Observation {
	latest, ok := LatestSnapshotTime(obs)
	if !ok {
		return []Observation{}
	}
	rows := SnapshotAt(obs, latest)
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := metric.Value(rows[i]), metric.Value(rows[j])
		if a != b {
			return a > b
		}
		return rows[i].CategoryName < rows[j].CategoryName
	})
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

// PivotTable has one row per snapshot time and one column per category.
// A nil cell means the category was absent from that snapshot.
type PivotTable struct {
	Metric     Metric       `json:"metric"`
	Times      []time.Time  `json:"times"`
	Categories []string     `json:"categories"`
	Cells      [][]*float64 `json:"cells"`
}

// Pivot lays out the metric of the named categories over time, the trend
// lines of a chart. Columns follow the order of names.
func Pivot(obs []Observation, names []string, metric Metric) *PivotTable {
	columns := make(map[string]int, len(names))
	for i, name := range names {
		columns[name] = i
	}
	selected := lo.Filter(obs, func(o Observation, _ int) bool {
		_, ok := columns[o.CategoryName]
		return ok
	})
	times := distinctTimes(selected)
	rows := make(map[time.Time]int, len(times))
	for i, t := range times {
		rows[t] = i
	}

	cells := make([][]*float64, len(times))
	for i := range cells {
		cells[i] = make([]*float64, len(names))
	}
	for _, o := range selected {
		v := metric.Value(o)
		cells[rows[o.SnapshotTime]][columns[o.CategoryName]] = &v
	}
	return &PivotTable{
		Metric:     metric,
		Times:      times,
		Categories: append([]string{}, names...),
		Cells:      cells,
	}
}

// Trend pivots metric for the top n categories of the latest snapshot.
func Trend(obs []Observation, metric Metric, n int) *PivotTable {
	top := TopAtLatest(obs, metric, n)
	names := lo.Map(top, func(o Observation, _ int) string { return o.CategoryName })
	return Pivot(obs, names, metric)
}

// Heatmap is a category by snapshot grid of viewer counts, zero filled.
type Heatmap struct {
	Categories []string    `json:"categories"`
	Times      []time.Time `json:"times"`
	Viewers    [][]int     `json:"viewers"`
}

// BuildHeatmap takes the top n categories of the latest snapshot by viewers and
// spreads their viewers over every snapshot time they appear in. Rows are
// ordered by category name.
func BuildHeatmap(obs []Observation, n int) *Heatmap {
	top := TopAtLatest(obs, MetricViewers, n)
	names := lo.Map(top, func(o Observation, _ int) string { return o.CategoryName })
	sort.Strings(names)
	index := make(map[string]int, len(names))
	for i, name := range names {
		index[name] = i
	}

	selected := lo.Filter(obs, func(o Observation, _ int) bool {
		_, ok := index[o.CategoryName]
		return ok
	})
	times := distinctTimes(selected)
	columns := make(map[time.Time]int, len(times))
	for i, t := range times {
		columns[t] = i
	}

	viewers := make([][]int, len(names))
	for i := range viewers {
		viewers[i] = make([]int, len(times))
	}
	for _, o := range selected {
		viewers[index[o.CategoryName]][columns[o.SnapshotTime]] += o.Viewers
	}
	return &Heatmap{Categories: names, Times: times, Viewers: viewers}
}

func distinctTimes(obs []Observation) []time.Time {
	times := lo.UniqBy(obs, func(o Observation) int64 { return o.SnapshotTime.UnixNano() })
	result := lo.Map(times, func(o Observation, _ int) time.Time { return o.SnapshotTime })
	sort.Slice(result, func(i, j int) bool { return result[i].Before(result[j]) })
	return result
}

// Struggling returns the categories that gained streamers while losing
// viewers, the biggest viewer loss first, then the biggest streamer gain.
func Struggling(table []*CategorySummary) []*CategorySummary {
	result := lo.Filter(table, func(s *CategorySummary, _ int) bool {
		return s.StreamerDelta > 0 && s.ViewerDelta < 0
	})
	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.ViewerDelta != b.ViewerDelta {
			return a.ViewerDelta < b.ViewerDelta
		}
		if a.StreamerDelta != b.StreamerDelta {
			return a.StreamerDelta > b.StreamerDelta
		}
		return a.CategoryName < b.CategoryName
	})
	return result
}

// MarketRow is one line of the market overview. LatestCompetition divides by
// at least one streamer regardless of policy and is rounded to two decimals.
type MarketRow struct {
	CategoryName      string     `json:"name"`
	MarketType        MarketType `json:"marketType"`
	StreamerDelta     int        `json:"streamerDelta"`
	ViewerDelta       int        `json:"viewerDelta"`
	LatestViewers     int        `json:"latestViewers"`
	LatestStreamers   int        `json:"latestStreamers"`
	LatestCompetition float64    `json:"latestCompetition"`
}

// MarketTable lists every category with its market type, most watched first.
func MarketTable(table []*CategorySummary) []*MarketRow {
	rows := lo.Map(table, func(s *CategorySummary, _ int) *MarketRow {
		return &MarketRow{
			CategoryName:      s.CategoryName,
			MarketType:        s.MarketType,
			StreamerDelta:     s.StreamerDelta,
			ViewerDelta:       s.ViewerDelta,
			LatestViewers:     s.Last.Viewers,
			LatestStreamers:   s.Last.Streamers,
			LatestCompetition: util.RoundFloat64(float64(s.Last.Viewers)/float64(lo.Max([]int{s.Last.Streamers, 1})), 2),
		}
	})
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].LatestViewers != rows[j].LatestViewers {
			return rows[i].LatestViewers > rows[j].LatestViewers
		}
		return rows[i].CategoryName < rows[j].CategoryName
	})
	return rows
}
