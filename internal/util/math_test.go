package util

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalcStatsBundle(t *testing.T) {
	tests := []struct {
		name   string
		values []int
		want   StatsBundle
	}{
		{"empty", nil, StatsBundle{}},
		{"single", []int{7}, StatsBundle{N: 1, Sum: 7, Avg: 7, Max: 7, StdDev: 0}},
		{"pair", []int{2, 4}, StatsBundle{N: 2, Sum: 6, Avg: 3, Max: 4, StdDev: math.Sqrt2}},
		{"constant", []int{5, 5, 5, 5}, StatsBundle{N: 4, Sum: 20, Avg: 5, Max: 5, StdDev: 0}},
		{"classic", []int{2, 4, 4, 4, 5, 5, 7, 9}, StatsBundle{N: 8, Sum: 40, Avg: 5, Max: 9, StdDev: math.Sqrt(32.0 / 7.0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalcStatsBundle(tt.values)
			assert.Equal(t, tt.want.N, got.N)
			assert.InDelta(t, tt.want.Sum, got.Sum, 1e-9)
			assert.InDelta(t, tt.want.Avg, got.Avg, 1e-9)
			assert.InDelta(t, tt.want.Max, got.Max, 1e-9)
			assert.InDelta(t, tt.want.StdDev, got.StdDev, 1e-9)
		})
	}
}

func TestSampleStdDevLargeValues(t *testing.T) {
	values := []int64{1_000_000_001, 1_000_000_001, 1_000_000_001}
	assert.Equal(t, 0.0, SampleStdDev(values))
}

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean([]float64{}))
	assert.InDelta(t, 2.5, Mean([]float64{1, 2, 3, 4}), 1e-9)
}

func TestRoundFloat64(t *testing.T) {
	assert.Equal(t, 3.14, RoundFloat64(3.14159, 2))
	assert.Equal(t, 2.67, RoundFloat64(8.0/3.0, 2))
	assert.Equal(t, 10.0, RoundFloat64(10, 2))
}
