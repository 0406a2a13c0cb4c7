package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompetitionIndex(t *testing.T) {
	tests := []struct {
		name      string
		streamers int
		viewers   int
		guard     ZeroGuard
		want      float64
	}{
		{"regular", 500, 50000, ZeroGuardZero, 100},
		{"fractional", 3, 10, ZeroGuardZero, 10.0 / 3.0},
		{"no viewers", 20, 0, ZeroGuardZero, 0},
		{"no streamers yields zero", 0, 500, ZeroGuardZero, 0},
		{"no streamers substitutes one", 0, 500, ZeroGuardOne, 500},
		{"nothing at all", 0, 0, ZeroGuardOne, 0},
		{"guard does not affect regular rows", 4, 10, ZeroGuardOne, 2.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompetitionIndex(tt.streamers, tt.viewers, tt.guard)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)
		})
	}
}

func TestParseZeroGuard(t *testing.T) {
	g, err := ParseZeroGuard("")
	require.NoError(t, err)
	assert.Equal(t, ZeroGuardZero, g)

	g, err = ParseZeroGuard(" ONE ")
	require.NoError(t, err)
	assert.Equal(t, ZeroGuardOne, g)
	assert.Equal(t, "one", g.String())

	_, err = ParseZeroGuard("infinity")
	assert.Error(t, err)
}

func TestDeriveAll(t *testing.T) {
	rows := []Row{
		{Rank: 1, CategoryName: "Just Chatting", Streamers: 500, Viewers: 50000},
		{Rank: 2, CategoryName: "Offline", Streamers: 0, Viewers: 30},
	}
	got := DeriveAll(rows, at(0), ZeroGuardZero)
	require.Len(t, got, 2)
	assert.Equal(t, at(0), got[0].SnapshotTime)
	assert.Equal(t, 100.0, got[0].CompetitionIndex)
	assert.Equal(t, 0.0, got[1].CompetitionIndex)
	assert.Equal(t, "Offline", got[1].CategoryName)
	assert.Equal(t, 2, got[1].Rank)
}
