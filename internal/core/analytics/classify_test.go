package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyMarket(t *testing.T) {
	tests := []struct {
		streamerDelta int
		viewerDelta   int
		want          MarketType
	}{
		{-100, 10000, MarketOpportunity},
		{100, 10000, MarketGrowing},
		{100, -10000, MarketOversupplied},
		{-100, -10000, MarketDeclining},
		{0, 10000, MarketStable},
		{100, 0, MarketStable},
		{0, 0, MarketStable},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyMarket(tt.streamerDelta, tt.viewerDelta), "streamers %d viewers %d", tt.streamerDelta, tt.viewerDelta)
	}
}

func TestClassifyGrowth(t *testing.T) {
	p := DefaultPolicy()
	tests := []struct {
		rate      float64
		rankDelta int
		want      GrowthType
	}{
		{9, 20, GrowthRapid},
		{0.81, 16, GrowthRapid},
		{0.8, 20, GrowthSteady},
		{0.9, 15, GrowthSteady},
		{0.31, 6, GrowthSteady},
		{0.3, 6, GrowthFlat},
		{0.5, 5, GrowthFlat},
		{-0.09, 0, GrowthFlat},
		{-0.1, 0, GrowthDecline},
		{-0.5, 30, GrowthDecline},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.ClassifyGrowth(tt.rate, tt.rankDelta), "rate %v rank delta %d", tt.rate, tt.rankDelta)
	}
}

func TestGrowthScoreCoefficients(t *testing.T) {
	p := DefaultPolicy()
	assert.InDelta(t, 50.0, p.GrowthScore(1, 0, 10, 0), 1e-9)
	assert.InDelta(t, 30.0, p.GrowthScore(0, 10, 10, 0), 1e-9)
	assert.InDelta(t, 2.0, p.GrowthScore(0, 0, 10, 1), 1e-9)
	// zero first rank divides by one
	assert.InDelta(t, -90.0, p.GrowthScore(0, -3, 0, 0), 1e-9)

	p.Weights = Weights{GrowthRate: 1, RankRatio: 1, Competition: 1}
	assert.InDelta(t, 3.5, p.GrowthScore(1, 5, 10, 2), 1e-9)
}

func TestGrowthRateZeroGuard(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, 0.0, p.GrowthRate(0, 100))
	assert.InDelta(t, 0.5, p.GrowthRate(100, 150), 1e-9)

	p.ZeroGuard = ZeroGuardOne
	assert.Equal(t, 100.0, p.GrowthRate(0, 100))
}

func TestClassifyJustChatting(t *testing.T) {
	input := []Observation{
		obs("Just Chatting", 0, 500, 50000, 1),
		obs("Just Chatting", 1, 400, 60000, 1),
	}
	table, err := Aggregate(input, DefaultPolicy())
	require.NoError(t, err)
	require.Len(t, table, 1)

	s := table[0]
	assert.Equal(t, 10000, s.ViewerDelta)
	assert.Equal(t, -100, s.StreamerDelta)
	assert.Equal(t, MarketOpportunity, s.MarketType)
	assert.InDelta(t, 0.2, s.GrowthRate, 1e-9)
	assert.Equal(t, GrowthFlat, s.GrowthType)
	// 0.2*50 + 0*30 + mean(100, 150)*2
	assert.InDelta(t, 260.0, s.GrowthScore, 1e-9)
}

func TestClassifyIndieGame(t *testing.T) {
	input := []Observation{
		obs("Indie Game", 0, 10, 100, 80),
		obs("Indie Game", 1, 30, 1000, 60),
	}
	table, err := Aggregate(input, DefaultPolicy())
	require.NoError(t, err)
	require.Len(t, table, 1)

	s := table[0]
	assert.InDelta(t, 9.0, s.GrowthRate, 1e-9)
	assert.Equal(t, 20, s.RankDelta)
	assert.Equal(t, GrowthRapid, s.GrowthType)
	assert.Equal(t, MarketGrowing, s.MarketType)
	// 9*50 + (20/80)*30 + mean(10, 100/3)*2
	assert.InDelta(t, 450+7.5+(10+100.0/3)/2*2, s.GrowthScore, 1e-9)
}

func TestClassifyIsIdempotent(t *testing.T) {
	p := DefaultPolicy()
	input := []Observation{
		obs("Indie Game", 0, 10, 100, 80),
		obs("Indie Game", 1, 30, 1000, 60),
	}
	table, err := Aggregate(input, p)
	require.NoError(t, err)

	before := *table[0]
	after := *p.Classify(table[0])
	assert.Equal(t, before, after)
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "狙い目（需要 > 供給）", MarketOpportunity.Label("ja"))
	assert.Equal(t, "Opportunity (demand > supply)", MarketOpportunity.Label("zh"))
	assert.Equal(t, "Rapid growth", GrowthRapid.Label("en"))
	assert.Equal(t, "mystery", MarketType("mystery").Label("en"))
}
