package v1

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catrank.dev/backend/internal/core/analytics"
	"catrank.dev/backend/internal/model/types"
)

func TestToCategoryView(t *testing.T) {
	first := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	last := first.Add(time.Hour)

	s := &analytics.CategorySummary{
		CategoryName:  "Just Chatting",
		First:         analytics.Observation{CategoryName: "Just Chatting", Rank: 2, Viewers: 1000, Streamers: 100, SnapshotTime: first},
		Last:          analytics.Observation{CategoryName: "Just Chatting", Rank: 1, Viewers: 1200, Streamers: 110, SnapshotTime: last},
		Peak:          analytics.Observation{CategoryName: "Just Chatting", Rank: 1, Viewers: 1200, Streamers: 110, SnapshotTime: last},
		Count:         2,
		ViewerSum:     2200,
		ViewerMean:    1100,
		ViewerMax:     1200,
		ViewerDelta:   200,
		StreamerDelta: 10,
		RankDelta:     1,
		GrowthRate:    0.2,
		MarketType:    analytics.MarketGrowing,
		GrowthType:    analytics.GrowthSteady,
	}

	view, err := toCategoryView(s, "en")
	require.NoError(t, err)

	assert.Equal(t, "Just Chatting", view.Name)
	assert.Equal(t, 2, view.Count)
	assert.Equal(t, 2200, view.ViewerSum)
	assert.Equal(t, 200, view.ViewerDelta)
	assert.Equal(t, 0.2, view.GrowthRate)
	assert.Equal(t, analytics.MarketGrowing, view.MarketType)
	assert.Equal(t, analytics.MarketGrowing.Label("en"), view.MarketLabel)
	assert.Equal(t, analytics.GrowthSteady.Label("en"), view.GrowthLabel)
	assert.Equal(t, 1, view.LatestRank)
	assert.Equal(t, 110, view.LatestStreamers)
	assert.Equal(t, first, view.FirstSeen)
	assert.Equal(t, last, view.PeakAt)
}

func TestToAnalyticsQuery(t *testing.T) {
	q, err := toAnalyticsQuery(&types.SummaryQuery{MinCount: 3, Sort: "GROWTH_SCORE", Order: "ASC", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, analytics.SortGrowthScore, q.SortKey)
	assert.True(t, q.Ascending)
	assert.Equal(t, 3, q.MinCount)
	assert.Equal(t, 10, q.Limit)

	q, err = toAnalyticsQuery(&types.SummaryQuery{})
	require.NoError(t, err)
	assert.Equal(t, analytics.DefaultSortKey, q.SortKey)
	assert.False(t, q.Ascending)

	_, err = toAnalyticsQuery(&types.SummaryQuery{Sort: "banana"})
	assert.ErrorIs(t, err, analytics.ErrUnknownSortKey)
}

func TestTopNOf(t *testing.T) {
	tests := []struct {
		query  string
		metric analytics.Metric
		n      int
		status int
	}{
		{"", analytics.MetricViewers, 20, fiber.StatusOK},
		{"?metric=streamers&top_n=5", analytics.MetricStreamers, 5, fiber.StatusOK},
		{"?top_n=4", "", 0, fiber.StatusBadRequest},
		{"?metric=followers", "", 0, fiber.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			app := fiber.New(fiber.Config{
				ErrorHandler: func(c *fiber.Ctx, err error) error {
					return c.SendStatus(fiber.StatusBadRequest)
				},
			})
			app.Get("/", func(c *fiber.Ctx) error {
				metric, n, err := topNOf(c, 20)
				if err != nil {
					return err
				}
				assert.Equal(t, tt.metric, metric)
				assert.Equal(t, tt.n, n)
				return c.SendStatus(fiber.StatusOK)
			})

			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/"+tt.query, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestCategoryNameOf(t *testing.T) {
	app := fiber.New()
	app.Get("/categories/:name", func(c *fiber.Ctx) error {
		name, err := categoryNameOf(c)
		if err != nil {
			return err
		}
		return c.SendString(name)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/categories/Grand%20Theft%20Auto%20V", nil))
	require.NoError(t, err)
	body := make([]byte, 64)
	n, _ := resp.Body.Read(body)
	assert.Equal(t, "Grand Theft Auto V", string(body[:n]))
}
