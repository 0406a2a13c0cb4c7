package service

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"catrank.dev/backend/internal/constant"
	"catrank.dev/backend/internal/core/analytics"
	"catrank.dev/backend/internal/pkg/apperr"
	"catrank.dev/backend/internal/pkg/rankcsv"
)

const (
	heatmapSheet = "heatmap"
	summarySheet = "summary"
)

var summaryCSVHeader = []string{
	"name", "count", "viewer_sum", "viewer_mean", "viewer_max", "viewer_stddev", "competition_mean",
	"viewer_delta", "streamer_delta", "rank_delta", "growth_rate", "growth_score", "market_type", "growth_type",
}

type Export struct {
	AnalyticsService *Analytics
}

func NewExport(analyticsService *Analytics) *Export {
	return &Export{
		AnalyticsService: analyticsService,
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// WriteSummaryCSV writes rows as CSV with display labels in lang.
func WriteSummaryCSV(w io.Writer, rows []*analytics.CategorySummary, lang string) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return errors.Wrap(err, "failed to write BOM")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(summaryCSVHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{
			r.CategoryName,
			strconv.Itoa(r.Count),
			strconv.Itoa(r.ViewerSum),
			formatFloat(r.ViewerMean),
			strconv.Itoa(r.ViewerMax),
			formatFloat(r.ViewerStdDev),
			formatFloat(r.CompetitionMean),
			strconv.Itoa(r.ViewerDelta),
			strconv.Itoa(r.StreamerDelta),
			strconv.Itoa(r.RankDelta),
			formatFloat(r.GrowthRate),
			formatFloat(r.GrowthScore),
			r.MarketType.Label(lang),
			r.GrowthType.Label(lang),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s *Export) SummaryCSV(ctx context.Context, w io.Writer, q analytics.Query, lang string) error {
	rows, err := s.AnalyticsService.Summary(ctx, q)
	if err != nil {
		return err
	}
	return WriteSummaryCSV(w, rows, lang)
}

// LatestCSV writes the newest snapshot in the history file format.
func (s *Export) LatestCSV(ctx context.Context, w io.Writer) (filename string, err error) {
	obs, err := s.AnalyticsService.Observations(ctx)
	if err != nil {
		return "", err
	}
	latest, ok := analytics.LatestSnapshotTime(obs)
	if !ok {
		return "", apperr.ErrNoData
	}

	snapshot := analytics.SnapshotAt(obs, latest)
	rows := make([]analytics.Row, len(snapshot))
	for i, o := range snapshot {
		rows[i] = analytics.Row{Rank: o.Rank, CategoryName: o.CategoryName, Streamers: o.Streamers, Viewers: o.Viewers}
	}
	return rankcsv.FileName(latest), rankcsv.Write(w, rows)
}

// WriteWorkbook renders the heatmap and the summary table as a spreadsheet.
func WriteWorkbook(w io.Writer, hm *analytics.Heatmap, table []*analytics.CategorySummary, lang string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", heatmapSheet); err != nil {
		return err
	}

	header := make([]any, 0, len(hm.Times)+1)
	header = append(header, "name")
	for _, t := range hm.Times {
		header = append(header, t.Format(constant.SnapshotTimeLayout))
	}
	if err := f.SetSheetRow(heatmapSheet, "A1", &header); err != nil {
		return err
	}
	for i, name := range hm.Categories {
		row := make([]any, 0, len(hm.Times)+1)
		row = append(row, name)
		for _, v := range hm.Viewers[i] {
			row = append(row, v)
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(heatmapSheet, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(heatmapSheet, "A", "A", 32); err != nil {
		return err
	}
	if len(hm.Categories) > 0 && len(hm.Times) > 0 {
		topLeft, _ := excelize.CoordinatesToCellName(2, 2)
		bottomRight, _ := excelize.CoordinatesToCellName(len(hm.Times)+1, len(hm.Categories)+1)
		if err := f.SetConditionalFormat(heatmapSheet, topLeft+":"+bottomRight, []excelize.ConditionalFormatOptions{{
			Type:     "2_color_scale",
			Criteria: "=",
			MinType:  "min",
			MaxType:  "max",
			MinColor: "#FFF5EB",
			MaxColor: "#D94801",
		}}); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}
	summaryHeader := make([]any, len(summaryCSVHeader))
	for i, h := range summaryCSVHeader {
		summaryHeader[i] = h
	}
	if err := f.SetSheetRow(summarySheet, "A1", &summaryHeader); err != nil {
		return err
	}
	for i, r := range table {
		row := []any{
			r.CategoryName, r.Count, r.ViewerSum, r.ViewerMean, r.ViewerMax, r.ViewerStdDev, r.CompetitionMean,
			r.ViewerDelta, r.StreamerDelta, r.RankDelta, r.GrowthRate, r.GrowthScore,
			r.MarketType.Label(lang), r.GrowthType.Label(lang),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func (s *Export) HeatmapXLSX(ctx context.Context, w io.Writer, n int, lang string) error {
	hm, err := s.AnalyticsService.Heatmap(ctx, n)
	if err != nil {
		return err
	}
	if len(hm.Times) == 0 {
		return apperr.ErrNoData
	}
	table, err := s.AnalyticsService.SummaryTable(ctx)
	if err != nil {
		return err
	}
	return WriteWorkbook(w, hm, table, lang)
}
