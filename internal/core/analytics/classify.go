package analytics

type MarketType string

const (
	// MarketOpportunity means fewer streamers are serving more viewers.
	MarketOpportunity  MarketType = "opportunity"
	MarketGrowing      MarketType = "growing"
	MarketOversupplied MarketType = "oversupplied"
	MarketDeclining    MarketType = "declining"
	MarketStable       MarketType = "stable"
)

type GrowthType string

const (
	GrowthRapid   GrowthType = "rapid_growth"
	GrowthSteady  GrowthType = "growth"
	GrowthFlat    GrowthType = "flat"
	GrowthDecline GrowthType = "decline"
)

var marketLabels = map[MarketType]map[string]string{
	MarketOpportunity:  {"en": "Opportunity (demand > supply)", "ja": "狙い目（需要 > 供給）"},
	MarketGrowing:      {"en": "Growing (viewers up, streamers up)", "ja": "成長市場（視聴者↑ 配信者↑）"},
	MarketOversupplied: {"en": "Oversupplied (viewers down, streamers up)", "ja": "過剰供給（視聴者↓ 配信者↑）"},
	MarketDeclining:    {"en": "Declining (viewers down, streamers down)", "ja": "衰退市場（視聴者↓ 配信者↓）"},
	MarketStable:       {"en": "Stable (no significant change)", "ja": "安定（大きな変化なし）"},
}

var growthLabels = map[GrowthType]map[string]string{
	GrowthRapid:   {"en": "Rapid growth", "ja": "急成長"},
	GrowthSteady:  {"en": "Growth", "ja": "成長"},
	GrowthFlat:    {"en": "Flat", "ja": "横ばい"},
	GrowthDecline: {"en": "Decline", "ja": "衰退"},
}

// Label returns the display string of m in lang, falling back to English.
func (m MarketType) Label(lang string) string {
	return label(marketLabels[m], lang, string(m))
}

func (g GrowthType) Label(lang string) string {
	return label(growthLabels[g], lang, string(g))
}

func label(labels map[string]string, lang, fallback string) string {
	if l, ok := labels[lang]; ok {
		return l
	}
	if l, ok := labels["en"]; ok {
		return l
	}
	return fallback
}

// ClassifyMarket labels a category by the direction its supply (streamers)
// and demand (viewers) moved between the first and last observation.
func ClassifyMarket(streamerDelta, viewerDelta int) MarketType {
	switch {
	case streamerDelta < 0 && viewerDelta > 0:
		return MarketOpportunity
	case streamerDelta > 0 && viewerDelta > 0:
		return MarketGrowing
	case streamerDelta > 0 && viewerDelta < 0:
		return MarketOversupplied
	case streamerDelta < 0 && viewerDelta < 0:
		return MarketDeclining
	default:
		return MarketStable
	}
}

// ClassifyGrowth applies the growth rules in priority order.
func (p Policy) ClassifyGrowth(growthRate float64, rankDelta int) GrowthType {
	switch {
	case p.RapidGrowth.Met(growthRate, rankDelta):
		return GrowthRapid
	case p.Growth.Met(growthRate, rankDelta):
		return GrowthSteady
	case growthRate > p.FlatRate:
		return GrowthFlat
	default:
		return GrowthDecline
	}
}

func (p Policy) GrowthRate(firstViewers, lastViewers int) float64 {
	return p.ZeroGuard.Ratio(float64(lastViewers-firstViewers), float64(firstViewers))
}

// GrowthScore blends growth rate, relative rank gain and mean competition.
// The rank ratio always substitutes 1 for a zero first rank.
func (p Policy) GrowthScore(growthRate float64, rankDelta, firstRank int, competitionMean float64) float64 {
	rankRatio := ZeroGuardOne.Ratio(float64(rankDelta), float64(firstRank))
	return growthRate*p.Weights.GrowthRate +
		rankRatio*p.Weights.RankRatio +
		competitionMean*p.Weights.Competition
}

// Classify fills the derived growth fields and labels of s in place and returns it.
func (p Policy) Classify(s *CategorySummary) *CategorySummary {
	s.GrowthRate = p.GrowthRate(s.First.Viewers, s.Last.Viewers)
	s.GrowthScore = p.GrowthScore(s.GrowthRate, s.RankDelta, s.First.Rank, s.CompetitionMean)
	s.MarketType = ClassifyMarket(s.StreamerDelta, s.ViewerDelta)
	s.GrowthType = p.ClassifyGrowth(s.GrowthRate, s.RankDelta)
	return s
}
