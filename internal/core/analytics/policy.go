package analytics

// Weights are the coefficients of the growth score.
type Weights struct {
	GrowthRate  float64
	RankRatio   float64
	Competition float64
}

// Threshold is met when the growth rate and the rank delta both strictly exceed it.
type Threshold struct {
	Rate      float64
	RankDelta int
}

func (t Threshold) Met(rate float64, rankDelta int) bool {
	return rate > t.Rate && rankDelta > t.RankDelta
}

// Policy carries every tunable of the classifier and scorer.
type Policy struct {
	ZeroGuard ZeroGuard
	Weights   Weights

	RapidGrowth Threshold
	Growth      Threshold
	// FlatRate is the growth rate above which a category that is not growing is still flat.
	FlatRate float64
}

const (
	DefaultGrowthRateWeight  = 50
	DefaultRankRatioWeight   = 30
	DefaultCompetitionWeight = 2

	DefaultRapidGrowthRate      = 0.8
	DefaultRapidGrowthRankDelta = 15
	DefaultGrowthRate           = 0.3
	DefaultGrowthRankDelta      = 5
	DefaultFlatRate             = -0.1
)

func DefaultPolicy() Policy {
	return Policy{
		ZeroGuard: ZeroGuardZero,
		Weights: Weights{
			GrowthRate:  DefaultGrowthRateWeight,
			RankRatio:   DefaultRankRatioWeight,
			Competition: DefaultCompetitionWeight,
		},
		RapidGrowth: Threshold{Rate: DefaultRapidGrowthRate, RankDelta: DefaultRapidGrowthRankDelta},
		Growth:      Threshold{Rate: DefaultGrowthRate, RankDelta: DefaultGrowthRankDelta},
		FlatRate:    DefaultFlatRate,
	}
}
