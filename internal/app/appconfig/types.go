package appconfig

import (
	"encoding/base64"
	"fmt"
	"strings"

	"catrank.dev/backend/internal/core/analytics"
)

type WorkerHeartbeatURLMap map[string]string

func (m *WorkerHeartbeatURLMap) Decode(value string) error {
	*m = WorkerHeartbeatURLMap{}
	if strings.TrimSpace(value) == "" {
		return nil
	}
	for _, pair := range strings.Split(value, ",") {
		kv := strings.SplitN(pair, ":", 2)
		if len(kv) != 2 {
			return fmt.Errorf("invalid heartbeat URL map: expect a `:` separated key pair for each element, but got: %s", value)
		}
		val, err := base64.StdEncoding.DecodeString(strings.TrimSpace(kv[1]))
		if err != nil {
			return fmt.Errorf("invalid value in worker heartbeat URL map: base64 decoding failed: %s (%w)", kv[1], err)
		}
		(*m)[strings.TrimSpace(kv[0])] = string(val)
	}
	return nil
}

// AnalyticsPolicy assembles the classifier policy from the configured overrides.
func (c *Config) AnalyticsPolicy() (analytics.Policy, error) {
	guard, err := analytics.ParseZeroGuard(c.AnalyticsZeroGuard)
	if err != nil {
		return analytics.Policy{}, err
	}
	return analytics.Policy{
		ZeroGuard: guard,
		Weights: analytics.Weights{
			GrowthRate:  c.AnalyticsGrowthRateWeight,
			RankRatio:   c.AnalyticsRankRatioWeight,
			Competition: c.AnalyticsCompetitionWeight,
		},
		RapidGrowth: analytics.Threshold{Rate: c.AnalyticsRapidGrowthRate, RankDelta: c.AnalyticsRapidGrowthRank},
		Growth:      analytics.Threshold{Rate: c.AnalyticsGrowthRate, RankDelta: c.AnalyticsGrowthRank},
		FlatRate:    c.AnalyticsFlatRate,
	}, nil
}
