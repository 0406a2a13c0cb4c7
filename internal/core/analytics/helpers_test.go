package analytics

import "time"

var baseTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func at(hours int) time.Time {
	return baseTime.Add(time.Duration(hours) * time.Hour)
}

func obs(name string, hours, streamers, viewers, rank int) Observation {
	return Derive(Row{Rank: rank, CategoryName: name, Streamers: streamers, Viewers: viewers}, at(hours), ZeroGuardZero)
}
