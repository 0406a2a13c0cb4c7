package analytics

import (
	"sort"
	"strings"

	"github.com/antonmedv/expr"
	"github.com/antonmedv/expr/vm"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

var (
	ErrUnknownSortKey = errors.New("unknown sort key")
	ErrInvalidExpr    = errors.New("invalid filter expression")
)

// SortKey names a numeric field of CategorySummary.
type SortKey string

const (
	SortCount           SortKey = "count"
	SortViewerSum       SortKey = "viewer_sum"
	SortViewerMean      SortKey = "viewer_mean"
	SortViewerMax       SortKey = "viewer_max"
	SortViewerStdDev    SortKey = "viewer_stddev"
	SortCompetitionMean SortKey = "competition_mean"
	SortViewerDelta     SortKey = "viewer_delta"
	SortStreamerDelta   SortKey = "streamer_delta"
	SortRankDelta       SortKey = "rank_delta"
	SortGrowthRate      SortKey = "growth_rate"
	SortGrowthScore     SortKey = "growth_score"
	SortLatestViewers   SortKey = "latest_viewers"
	SortLatestStreamers SortKey = "latest_streamers"
	SortLatestRank      SortKey = "latest_rank"

	DefaultSortKey = SortViewerSum
)

var sortKeyFields = map[SortKey]func(s *CategorySummary) float64{
	SortCount:           func(s *CategorySummary) float64 { return float64(s.Count) },
	SortViewerSum:       func(s *CategorySummary) float64 { return float64(s.ViewerSum) },
	SortViewerMean:      func(s *CategorySummary) float64 { return s.ViewerMean },
	SortViewerMax:       func(s *CategorySummary) float64 { return float64(s.ViewerMax) },
	SortViewerStdDev:    func(s *CategorySummary) float64 { return s.ViewerStdDev },
	SortCompetitionMean: func(s *CategorySummary) float64 { return s.CompetitionMean },
	SortViewerDelta:     func(s *CategorySummary) float64 { return float64(s.ViewerDelta) },
	SortStreamerDelta:   func(s *CategorySummary) float64 { return float64(s.StreamerDelta) },
	SortRankDelta:       func(s *CategorySummary) float64 { return float64(s.RankDelta) },
	SortGrowthRate:      func(s *CategorySummary) float64 { return s.GrowthRate },
	SortGrowthScore:     func(s *CategorySummary) float64 { return s.GrowthScore },
	SortLatestViewers:   func(s *CategorySummary) float64 { return float64(s.Last.Viewers) },
	SortLatestStreamers: func(s *CategorySummary) float64 { return float64(s.Last.Streamers) },
	SortLatestRank:      func(s *CategorySummary) float64 { return float64(s.Last.Rank) },
}

// SortKeys lists every accepted sort key in a stable order.
func SortKeys() []SortKey {
	keys := lo.Keys(sortKeyFields)
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func ParseSortKey(s string) (SortKey, error) {
	if s == "" {
		return DefaultSortKey, nil
	}
	k := SortKey(strings.ToLower(s))
	if _, ok := sortKeyFields[k]; !ok {
		return "", errors.Wrapf(ErrUnknownSortKey, "%q", s)
	}
	return k, nil
}

// Query selects, orders and bounds rows of a summary table.
// The zero value matches every row and sorts by DefaultSortKey descending.
type Query struct {
	// MinCount and MinViewerSum are inclusive lower bounds.
	MinCount     int
	MinViewerSum int
	// NameContains is matched case-insensitively; blank matches every name.
	NameContains string

	SortKey   SortKey
	Ascending bool
	// Limit <= 0 keeps every matching row.
	Limit int

	// Expr is an optional boolean expression over CategorySummary fields,
	// e.g. `GrowthRate > 0.5 && Count >= 3`.
	Expr string
}

// Apply returns the rows of table matching q. table itself is left untouched;
// no matching rows yields an empty, non-nil slice.
func Apply(table []*CategorySummary, q Query) ([]*CategorySummary, error) {
	key, err := ParseSortKey(strings.TrimSpace(string(q.SortKey)))
	if err != nil {
		return nil, err
	}
	field := sortKeyFields[key]

	program, err := compileExpr(q.Expr)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(q.NameContains))
	result := make([]*CategorySummary, 0, len(table))
	for _, s := range table {
		if s.Count < q.MinCount || s.ViewerSum < q.MinViewerSum {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(s.CategoryName), needle) {
			continue
		}
		if program != nil {
			matched, err := runExpr(program, s)
			if err != nil {
				return nil, err
			}
			if !matched {
				continue
			}
		}
		result = append(result, s)
	}

	sort.SliceStable(result, func(i, j int) bool {
		a, b := field(result[i]), field(result[j])
		if a != b {
			if q.Ascending {
				return a < b
			}
			return a > b
		}
		return result[i].CategoryName < result[j].CategoryName
	})

	if q.Limit > 0 && len(result) > q.Limit {
		result = result[:q.Limit]
	}
	return result, nil
}

func compileExpr(input string) (*vm.Program, error) {
	if strings.TrimSpace(input) == "" {
		return nil, nil
	}
	program, err := expr.Compile(input, expr.Env(exprEnv(&CategorySummary{})), expr.AsBool())
	if err != nil {
		return nil, errors.Wrap(ErrInvalidExpr, err.Error())
	}
	return program, nil
}

func runExpr(program *vm.Program, s *CategorySummary) (bool, error) {
	out, err := expr.Run(program, exprEnv(s))
	if err != nil {
		return false, errors.Wrap(ErrInvalidExpr, err.Error())
	}
	matched, _ := out.(bool)
	return matched, nil
}

// exprEnv exposes the fields of s to expressions. Labels are plain strings so
// they compare against string literals.
func exprEnv(s *CategorySummary) map[string]any {
	return map[string]any{
		"CategoryName":    s.CategoryName,
		"First":           s.First,
		"Last":            s.Last,
		"Peak":            s.Peak,
		"Count":           s.Count,
		"ViewerSum":       s.ViewerSum,
		"ViewerMean":      s.ViewerMean,
		"ViewerMax":       s.ViewerMax,
		"ViewerStdDev":    s.ViewerStdDev,
		"CompetitionMean": s.CompetitionMean,
		"ViewerDelta":     s.ViewerDelta,
		"StreamerDelta":   s.StreamerDelta,
		"RankDelta":       s.RankDelta,
		"GrowthRate":      s.GrowthRate,
		"GrowthScore":     s.GrowthScore,
		"MarketType":      string(s.MarketType),
		"GrowthType":      string(s.GrowthType),
	}
}
