package constant

const (
	// DefaultTopN is used by /latest when top_n is omitted. top_n itself is bounded to [5, 50].
	DefaultTopN = 20

	HeatmapTopN = 50
	TrendTopN   = 10
)
