package analytics

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(table []*CategorySummary) []string {
	return lo.Map(table, func(s *CategorySummary, _ int) string { return s.CategoryName })
}

func fixtureTable(t *testing.T) []*CategorySummary {
	t.Helper()
	input := []Observation{
		obs("Just Chatting", 0, 500, 50000, 1),
		obs("Just Chatting", 1, 400, 60000, 1),
		obs("Just Chatting", 2, 450, 55000, 1),
		obs("Indie Game", 0, 10, 100, 80),
		obs("Indie Game", 1, 30, 1000, 60),
		obs("Chess", 0, 40, 12000, 12),
		obs("Chess", 1, 50, 9000, 14),
		obs("Chess", 2, 60, 8000, 15),
	}
	table, err := Aggregate(input, DefaultPolicy())
	require.NoError(t, err)
	return table
}

func TestApplyMinCountBoundary(t *testing.T) {
	table := fixtureTable(t)

	got, err := Apply(table, Query{MinCount: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"Just Chatting", "Chess"}, names(got))

	got, err = Apply(table, Query{MinCount: 2})
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestApplyMinViewerSum(t *testing.T) {
	table := fixtureTable(t)
	got, err := Apply(table, Query{MinViewerSum: 29000})
	require.NoError(t, err)
	assert.Equal(t, []string{"Just Chatting", "Chess"}, names(got))

	got, err = Apply(table, Query{MinViewerSum: 29001})
	require.NoError(t, err)
	assert.Equal(t, []string{"Just Chatting"}, names(got))
}

func TestApplyNameContains(t *testing.T) {
	table := fixtureTable(t)

	got, err := Apply(table, Query{NameContains: "CHAT"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Just Chatting"}, names(got))

	got, err = Apply(table, Query{NameContains: "   "})
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestApplyEmptyResult(t *testing.T) {
	table := fixtureTable(t)
	got, err := Apply(table, Query{NameContains: "fortnite"})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got, err = Apply(nil, Query{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestApplySortAndLimit(t *testing.T) {
	table := make([]*CategorySummary, 0, 50)
	// pairs share a viewer sum so ties need the name to break them
	for i := 49; i >= 0; i-- {
		table = append(table, &CategorySummary{
			CategoryName: fmt.Sprintf("cat-%02d", i),
			Count:        1,
			ViewerSum:    (i / 2) * 10,
		})
	}

	got, err := Apply(table, Query{SortKey: SortViewerSum, Limit: 20})
	require.NoError(t, err)
	require.Len(t, got, 20)

	want := make([]string, 0, 20)
	for pair := 24; pair >= 15; pair-- {
		want = append(want, fmt.Sprintf("cat-%02d", pair*2), fmt.Sprintf("cat-%02d", pair*2+1))
	}
	assert.Equal(t, want, names(got))
	assert.Len(t, table, 50)
}

func TestApplyAscending(t *testing.T) {
	table := fixtureTable(t)
	got, err := Apply(table, Query{SortKey: SortGrowthRate, Ascending: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Chess", "Just Chatting", "Indie Game"}, names(got))
}

func TestApplyUnknownSortKey(t *testing.T) {
	_, err := Apply(fixtureTable(t), Query{SortKey: "popularity"})
	assert.True(t, errors.Is(err, ErrUnknownSortKey))

	_, err = ParseSortKey("popularity")
	assert.True(t, errors.Is(err, ErrUnknownSortKey))

	k, err := ParseSortKey("Growth_Score")
	require.NoError(t, err)
	assert.Equal(t, SortGrowthScore, k)

	k, err = ParseSortKey("")
	require.NoError(t, err)
	assert.Equal(t, DefaultSortKey, k)
}

func TestApplySortKeyIgnoresCase(t *testing.T) {
	table := fixtureTable(t)
	want, err := Apply(table, Query{SortKey: SortGrowthRate, Ascending: true})
	require.NoError(t, err)

	for _, key := range []SortKey{"GROWTH_RATE", "Growth_Rate", " growth_rate "} {
		got, err := Apply(table, Query{SortKey: key, Ascending: true})
		require.NoError(t, err, key)
		assert.Equal(t, names(want), names(got), key)
	}
}

func TestApplyExpr(t *testing.T) {
	table := fixtureTable(t)

	got, err := Apply(table, Query{Expr: "GrowthRate > 0.05 && Count >= 3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Just Chatting"}, names(got))

	got, err = Apply(table, Query{Expr: "Last.Rank > 10", SortKey: SortLatestRank, Ascending: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Chess", "Indie Game"}, names(got))

	got, err = Apply(table, Query{Expr: `MarketType == "opportunity"`})
	require.NoError(t, err)
	assert.Equal(t, []string{"Just Chatting"}, names(got))

	got, err = Apply(table, Query{Expr: `MarketType in ["growing", "oversupplied"]`})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Indie Game", "Chess"}, names(got))

	got, err = Apply(table, Query{Expr: `GrowthType == "decline" && CategoryName != ""`})
	require.NoError(t, err)
	assert.Equal(t, []string{"Chess"}, names(got))

	_, err = Apply(table, Query{Expr: "Unknown > 1"})
	assert.True(t, errors.Is(err, ErrInvalidExpr))

	_, err = Apply(table, Query{Expr: "Count >"})
	assert.True(t, errors.Is(err, ErrInvalidExpr))

	_, err = Apply(table, Query{Expr: "Count + 1"})
	assert.True(t, errors.Is(err, ErrInvalidExpr))
}

func TestSortKeys(t *testing.T) {
	keys := SortKeys()
	assert.Len(t, keys, 14)
	assert.Contains(t, keys, SortGrowthScore)
	assert.IsIncreasing(t, lo.Map(keys, func(k SortKey, _ int) string { return string(k) }))
}
