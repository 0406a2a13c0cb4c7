package v1

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"

	"catrank.dev/backend/internal/constant"
	"catrank.dev/backend/internal/model/types"
	"catrank.dev/backend/internal/pkg/cachectrl"
	"catrank.dev/backend/internal/server/svr"
	"catrank.dev/backend/internal/service"
	"catrank.dev/backend/internal/util/rekuest"
)

const analyticsMaxAge = 5 * time.Minute

type Analytics struct {
	fx.In

	AnalyticsService *service.Analytics
}

func RegisterAnalytics(v1 *svr.V1, c Analytics) {
	v1.Get("/summary", c.GetSummary)
	v1.Get("/categories/:name", c.GetCategory)
	v1.Get("/categories/:name/series", c.GetCategorySeries)
	v1.Get("/market", c.GetMarket)
	v1.Get("/struggling", c.GetStruggling)
	v1.Get("/latest", c.GetLatest)
	v1.Get("/trend", c.GetTrend)
	v1.Get("/heatmap", c.GetHeatmap)
}

func (c *Analytics) optIn(ctx *fiber.Ctx) {
	if t := c.AnalyticsService.LastModified(ctx.UserContext()); !t.IsZero() {
		cachectrl.OptInCustom(ctx, t, analyticsMaxAge)
	}
}

// @Summary      Get Category Summary Table
// @Description  Every category seen in the history window with its statistics, deltas and labels. Rows can be filtered, sorted and limited.
// @Tags         Analytics
// @Produce      json
// @Param        min_count    query     int     false  "Minimum number of snapshots a category appears in"
// @Param        min_viewers  query     int     false  "Minimum viewer sum"
// @Param        q            query     string  false  "Case-insensitive substring of the category name"
// @Param        sort         query     string  false  "Sort key, e.g. viewer_sum or growth_score"
// @Param        order        query     string  false  "asc or desc"  Enums(asc, desc)
// @Param        limit        query     int     false  "Maximum number of rows, 0 for all"
// @Param        expr         query     string  false  "Boolean filter expression, e.g. GrowthRate > 0.5 && Count >= 3"
// @Param        lang         query     string  false  "Label language"  Enums(en, ja)
// @Success      200          {array}   types.CategoryView
// @Failure      400          {object}  apperr.Error  "Invalid query"
// @Failure      500          {object}  apperr.Error  "An unexpected error occurred"
// @Router       /api/v1/summary [GET]
func (c *Analytics) GetSummary(ctx *fiber.Ctx) error {
	var query types.SummaryQuery
	if err := rekuest.ValidQuery(ctx, &query); err != nil {
		return err
	}
	lang, err := langOf(ctx)
	if err != nil {
		return err
	}
	q, err := toAnalyticsQuery(&query)
	if err != nil {
		return err
	}

	rows, err := c.AnalyticsService.Summary(ctx.UserContext(), q)
	if err != nil {
		return err
	}
	views, err := toCategoryViews(rows, lang)
	if err != nil {
		return err
	}

	c.optIn(ctx)
	return ctx.JSON(views)
}

// @Summary      Get a Category
// @Tags         Analytics
// @Produce      json
// @Param        name  path      string  true  "Category name, URL-escaped"
// @Success      200   {object}  types.CategoryDetail
// @Failure      404   {object}  apperr.Error  "The category has not been observed"
// @Failure      500   {object}  apperr.Error  "An unexpected error occurred"
// @Router       /api/v1/categories/{name} [GET]
func (c *Analytics) GetCategory(ctx *fiber.Ctx) error {
	name, err := categoryNameOf(ctx)
	if err != nil {
		return err
	}
	lang, err := langOf(ctx)
	if err != nil {
		return err
	}

	summary, series, err := c.AnalyticsService.Category(ctx.UserContext(), name)
	if err != nil {
		return err
	}
	view, err := toCategoryView(summary, lang)
	if err != nil {
		return err
	}

	c.optIn(ctx)
	return ctx.JSON(types.CategoryDetail{
		CategoryView: view,
		Series:       series,
	})
}

// @Summary      Get the Time Series of a Category
// @Tags         Analytics
// @Produce      json
// @Param        name  path      string  true  "Category name, URL-escaped"
// @Success      200   {array}   analytics.Observation
// @Failure      404   {object}  apperr.Error  "The category has not been observed"
// @Router       /api/v1/categories/{name}/series [GET]
func (c *Analytics) GetCategorySeries(ctx *fiber.Ctx) error {
	name, err := categoryNameOf(ctx)
	if err != nil {
		return err
	}

	_, series, err := c.AnalyticsService.Category(ctx.UserContext(), name)
	if err != nil {
		return err
	}

	c.optIn(ctx)
	return ctx.JSON(series)
}

// @Summary      Get Market Overview
// @Tags         Analytics
// @Produce      json
// @Success      200  {array}   analytics.MarketRow
// @Failure      500  {object}  apperr.Error  "An unexpected error occurred"
// @Router       /api/v1/market [GET]
func (c *Analytics) GetMarket(ctx *fiber.Ctx) error {
	rows, err := c.AnalyticsService.Market(ctx.UserContext())
	if err != nil {
		return err
	}

	c.optIn(ctx)
	return ctx.JSON(rows)
}

// @Summary      Get Struggling Categories
// @Description  Categories that gained streamers while losing viewers.
// @Tags         Analytics
// @Produce      json
// @Param        lang  query     string  false  "Label language"  Enums(en, ja)
// @Success      200   {array}   types.CategoryView
// @Router       /api/v1/struggling [GET]
func (c *Analytics) GetStruggling(ctx *fiber.Ctx) error {
	lang, err := langOf(ctx)
	if err != nil {
		return err
	}

	rows, err := c.AnalyticsService.Struggling(ctx.UserContext())
	if err != nil {
		return err
	}
	views, err := toCategoryViews(rows, lang)
	if err != nil {
		return err
	}

	c.optIn(ctx)
	return ctx.JSON(views)
}

// @Summary      Get the Latest Ranking
// @Tags         Analytics
// @Produce      json
// @Param        metric  query     string  false  "Ranking metric"  Enums(viewers, streamers, competition_index)
// @Param        top_n   query     int     false  "Number of rows, 5 to 50"
// @Success      200     {object}  types.LatestResponse
// @Failure      400     {object}  apperr.Error  "Invalid query"
// @Router       /api/v1/latest [GET]
func (c *Analytics) GetLatest(ctx *fiber.Ctx) error {
	metric, n, err := topNOf(ctx, constant.DefaultTopN)
	if err != nil {
		return err
	}

	snapshotTime, rows, err := c.AnalyticsService.Latest(ctx.UserContext(), metric, n)
	if err != nil {
		return err
	}

	c.optIn(ctx)
	return ctx.JSON(types.LatestResponse{
		SnapshotTime: snapshotTime,
		Metric:       metric,
		Rows:         rows,
	})
}

// @Summary      Get Trend Lines
// @Description  The metric of the top categories of the latest snapshot over every snapshot time. Absent cells are null.
// @Tags         Analytics
// @Produce      json
// @Param        metric  query     string  false  "Charted metric"  Enums(viewers, streamers, competition_index)
// @Param        top_n   query     int     false  "Number of categories, 5 to 50"
// @Success      200     {object}  analytics.PivotTable
// @Router       /api/v1/trend [GET]
func (c *Analytics) GetTrend(ctx *fiber.Ctx) error {
	metric, n, err := topNOf(ctx, constant.TrendTopN)
	if err != nil {
		return err
	}

	table, err := c.AnalyticsService.Trend(ctx.UserContext(), metric, n)
	if err != nil {
		return err
	}

	c.optIn(ctx)
	return ctx.JSON(table)
}

// @Summary      Get Viewer Heatmap
// @Tags         Analytics
// @Produce      json
// @Param        top_n  query     int  false  "Number of categories, 5 to 50"
// @Success      200    {object}  analytics.Heatmap
// @Router       /api/v1/heatmap [GET]
func (c *Analytics) GetHeatmap(ctx *fiber.Ctx) error {
	_, n, err := topNOf(ctx, constant.HeatmapTopN)
	if err != nil {
		return err
	}

	hm, err := c.AnalyticsService.Heatmap(ctx.UserContext(), n)
	if err != nil {
		return err
	}

	c.optIn(ctx)
	return ctx.JSON(hm)
}
