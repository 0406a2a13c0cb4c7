package analytics

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func viewsFixture() []Observation {
	return []Observation{
		obs("Just Chatting", 0, 500, 50000, 1),
		obs("Chess", 0, 40, 12000, 3),
		obs("Indie Game", 0, 10, 100, 80),
		obs("Just Chatting", 1, 400, 60000, 1),
		obs("Chess", 1, 60, 8000, 4),
		obs("Minecraft", 1, 0, 20000, 2),
	}
}

func TestParseMetric(t *testing.T) {
	m, err := ParseMetric("")
	require.NoError(t, err)
	assert.Equal(t, MetricViewers, m)

	m, err = ParseMetric("competition_index")
	require.NoError(t, err)
	assert.Equal(t, MetricCompetitionIndex, m)

	_, err = ParseMetric("followers")
	assert.True(t, errors.Is(err, ErrUnknownMetric))
}

func TestLatestSnapshotTime(t *testing.T) {
	_, ok := LatestSnapshotTime(nil)
	assert.False(t, ok)

	latest, ok := LatestSnapshotTime(viewsFixture())
	assert.True(t, ok)
	assert.Equal(t, at(1), latest)
}

func TestTopAtLatest(t *testing.T) {
	input := viewsFixture()

	top := TopAtLatest(input, MetricViewers, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "Just Chatting", top[0].CategoryName)
	assert.Equal(t, "Minecraft", top[1].CategoryName)

	top = TopAtLatest(input, MetricStreamers, 0)
	assert.Equal(t, []string{"Just Chatting", "Chess", "Minecraft"}, []string{
		top[0].CategoryName, top[1].CategoryName, top[2].CategoryName,
	})

	assert.Empty(t, TopAtLatest(nil, MetricViewers, 10))
}

func TestTrend(t *testing.T) {
	trend := Trend(viewsFixture(), MetricViewers, 2)
	assert.Equal(t, []string{"Just Chatting", "Minecraft"}, trend.Categories)
	require.Len(t, trend.Times, 2)
	require.Len(t, trend.Cells, 2)

	require.NotNil(t, trend.Cells[0][0])
	assert.Equal(t, 50000.0, *trend.Cells[0][0])
	// Minecraft was not listed in the first snapshot
	assert.Nil(t, trend.Cells[0][1])
	require.NotNil(t, trend.Cells[1][1])
	assert.Equal(t, 20000.0, *trend.Cells[1][1])
}

func TestBuildHeatmap(t *testing.T) {
	heatmap := BuildHeatmap(viewsFixture(), 50)
	// Indie Game dropped out of the latest snapshot
	assert.Equal(t, []string{"Chess", "Just Chatting", "Minecraft"}, heatmap.Categories)
	assert.Equal(t, [][]int{
		{12000, 8000},
		{50000, 60000},
		{0, 20000},
	}, heatmap.Viewers)

	empty := BuildHeatmap(nil, 50)
	assert.Empty(t, empty.Categories)
	assert.Empty(t, empty.Times)
}

func TestStruggling(t *testing.T) {
	table := []*CategorySummary{
		{CategoryName: "b", StreamerDelta: 5, ViewerDelta: -100},
		{CategoryName: "a", StreamerDelta: 5, ViewerDelta: -100},
		{CategoryName: "c", StreamerDelta: 9, ViewerDelta: -100},
		{CategoryName: "d", StreamerDelta: 1, ViewerDelta: -500},
		{CategoryName: "e", StreamerDelta: 0, ViewerDelta: -900},
		{CategoryName: "f", StreamerDelta: 3, ViewerDelta: 10},
	}
	got := Struggling(table)
	assert.Equal(t, []string{"d", "c", "a", "b"}, names(got))
}

func TestMarketTable(t *testing.T) {
	table, err := Aggregate(viewsFixture(), DefaultPolicy())
	require.NoError(t, err)

	rows := MarketTable(table)
	require.Len(t, rows, 4)
	assert.Equal(t, "Just Chatting", rows[0].CategoryName)
	assert.Equal(t, MarketOpportunity, rows[0].MarketType)
	assert.Equal(t, 150.0, rows[0].LatestCompetition)

	assert.Equal(t, "Minecraft", rows[1].CategoryName)
	assert.Equal(t, 20000.0, rows[1].LatestCompetition)

	assert.Equal(t, "Chess", rows[2].CategoryName)
	assert.Equal(t, MarketOversupplied, rows[2].MarketType)
	assert.Equal(t, 133.33, rows[2].LatestCompetition)
}
