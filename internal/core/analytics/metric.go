package analytics

import (
	"fmt"
	"strings"
	"time"
)

// ZeroGuard resolves a ratio whose denominator is zero.
type ZeroGuard int

const (
	// ZeroGuardZero yields 0 when the denominator is zero.
	ZeroGuardZero ZeroGuard = iota
	// ZeroGuardOne substitutes 1 for a zero denominator, so the ratio equals the numerator.
	ZeroGuardOne
)

func ParseZeroGuard(s string) (ZeroGuard, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "zero":
		return ZeroGuardZero, nil
	case "one":
		return ZeroGuardOne, nil
	default:
		return ZeroGuardZero, fmt.Errorf("analytics: unknown zero guard %q", s)
	}
}

func (g ZeroGuard) String() string {
	if g == ZeroGuardOne {
		return "one"
	}
	return "zero"
}

// Ratio divides num by den, resolving a zero den according to g.
func (g ZeroGuard) Ratio(num, den float64) float64 {
	if den == 0 {
		if g == ZeroGuardOne {
			return num
		}
		return 0
	}
	return num / den
}

// Row is a single ranked category line as published by the upstream source.
type Row struct {
	Rank         int    `json:"rank"`
	CategoryName string `json:"name"`
	Streamers    int    `json:"streamers"`
	Viewers      int    `json:"viewers"`
}

// Observation is one row of one snapshot with its derived competition index.
// (CategoryName, SnapshotTime) identifies an observation within a set.
type Observation struct {
	CategoryName     string    `json:"name"`
	Streamers        int       `json:"streamers"`
	Viewers          int       `json:"viewers"`
	Rank             int       `json:"rank"`
	SnapshotTime     time.Time `json:"snapshotTime"`
	CompetitionIndex float64   `json:"competitionIndex"`
}

// CompetitionIndex is viewers per streamer. Negative inputs never reach here;
// loaders reject them.
func CompetitionIndex(streamers, viewers int, guard ZeroGuard) float64 {
	return guard.Ratio(float64(viewers), float64(streamers))
}

func Derive(row Row, snapshotTime time.Time, guard ZeroGuard) Observation {
	return Observation{
		CategoryName:     row.CategoryName,
		Streamers:        row.Streamers,
		Viewers:          row.Viewers,
		Rank:             row.Rank,
		SnapshotTime:     snapshotTime,
		CompetitionIndex: CompetitionIndex(row.Streamers, row.Viewers, guard),
	}
}

// DeriveAll derives every row of a single snapshot taken at snapshotTime.
func DeriveAll(rows []Row, snapshotTime time.Time, guard ZeroGuard) []Observation {
	obs := make([]Observation, 0, len(rows))
	for _, row := range rows {
		obs = append(obs, Derive(row, snapshotTime, guard))
	}
	return obs
}
