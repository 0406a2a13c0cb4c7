package v1

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/copier"
	"github.com/samber/lo"

	"catrank.dev/backend/internal/core/analytics"
	"catrank.dev/backend/internal/model/types"
	"catrank.dev/backend/internal/pkg/apperr"
	"catrank.dev/backend/internal/util/i18n"
	"catrank.dev/backend/internal/util/rekuest"
)

// toCategoryView flattens a summary row and resolves its labels in lang.
func toCategoryView(s *analytics.CategorySummary, lang string) (*types.CategoryView, error) {
	var view types.CategoryView
	if err := copier.Copy(&view, s); err != nil {
		return nil, err
	}

	view.Name = s.CategoryName
	view.MarketLabel = s.MarketType.Label(lang)
	view.GrowthLabel = s.GrowthType.Label(lang)
	view.LatestRank = s.Last.Rank
	view.LatestViewers = s.Last.Viewers
	view.LatestStreamers = s.Last.Streamers
	view.FirstSeen = s.First.SnapshotTime
	view.LastSeen = s.Last.SnapshotTime
	view.PeakViewers = s.Peak.Viewers
	view.PeakAt = s.Peak.SnapshotTime

	return &view, nil
}

func toCategoryViews(rows []*analytics.CategorySummary, lang string) ([]*types.CategoryView, error) {
	views := make([]*types.CategoryView, 0, len(rows))
	for _, row := range rows {
		view, err := toCategoryView(row, lang)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func toAnalyticsQuery(q *types.SummaryQuery) (analytics.Query, error) {
	key, err := analytics.ParseSortKey(q.Sort)
	if err != nil {
		return analytics.Query{}, err
	}

	return analytics.Query{
		MinCount:     q.MinCount,
		MinViewerSum: q.MinViewers,
		NameContains: q.Q,
		SortKey:      key,
		Ascending:    strings.EqualFold(q.Order, "asc"),
		Limit:        q.Limit,
		Expr:         q.Expr,
	}, nil
}

// langOf prefers the lang query parameter over the negotiated Accept-Language.
func langOf(ctx *fiber.Ctx) (string, error) {
	var q types.LangQuery
	if err := rekuest.ValidQuery(ctx, &q); err != nil {
		return "", err
	}
	if q.Lang != "" {
		return strings.ToLower(q.Lang), nil
	}
	return i18n.Lang(rekuest.TranslatorFromCtx(ctx)), nil
}

// topNOf parses the metric and top_n query parameters, defaulting top_n to fallback.
func topNOf(ctx *fiber.Ctx, fallback int) (analytics.Metric, int, error) {
	var q types.TopNQuery
	if err := rekuest.ValidQuery(ctx, &q); err != nil {
		return "", 0, err
	}
	metric, err := analytics.ParseMetric(q.Metric)
	if err != nil {
		return "", 0, err
	}
	return metric, lo.Ternary(q.TopN == 0, fallback, q.TopN), nil
}

func categoryNameOf(ctx *fiber.Ctx) (string, error) {
	name, err := url.PathUnescape(ctx.Params("name"))
	if err != nil || strings.TrimSpace(name) == "" {
		return "", apperr.ErrInvalidReq.Msg("invalid request: category name is missing or malformed")
	}
	return name, nil
}
