package util

import (
	"math"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/constraints"
)

type Number interface {
	constraints.Integer | constraints.Float
}

// StatsBundle describes a sample by its size, mean and sample standard deviation.
type StatsBundle struct {
	N      int
	Sum    float64
	Avg    float64
	Max    float64
	StdDev float64
}

// CalcStatsBundle computes the bundle of values. StdDev uses Bessel's
// correction (n-1) and is 0 when fewer than two values are given.
func CalcStatsBundle[T Number](values []T) *StatsBundle {
	bundle := &StatsBundle{N: len(values)}
	if bundle.N == 0 {
		return bundle
	}
	bundle.Max = float64(values[0])
	for _, v := range values {
		f := float64(v)
		bundle.Sum += f
		if f > bundle.Max {
			bundle.Max = f
		}
	}
	bundle.Avg = bundle.Sum / float64(bundle.N)
	bundle.StdDev = calcSampleStdDev(values, bundle.Avg)
	return bundle
}

// two-pass form; the textbook sum-of-squares form loses precision on
// viewer counts in the millions
func calcSampleStdDev[T Number](values []T, avg float64) float64 {
	n := len(values)
	if n <= 1 {
		return 0
	}
	acc := 0.0
	for _, v := range values {
		d := float64(v) - avg
		acc += d * d
	}
	variance := acc / float64(n-1)
	if variance < 0 {
		// should not happen
		log.Error().Float64("variance", variance).Msg("variance is less than 0")
		return 0
	}
	return math.Sqrt(variance)
}

// SampleStdDev returns the sample standard deviation of values.
func SampleStdDev[T Number](values []T) float64 {
	return CalcStatsBundle(values).StdDev
}

func Mean[T Number](values []T) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += float64(v)
	}
	return sum / float64(len(values))
}

func RoundFloat64(f float64, n int) float64 {
	pow := math.Pow10(n)
	return math.Round(f*pow) / pow
}
