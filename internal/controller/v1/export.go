package v1

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"

	"catrank.dev/backend/internal/constant"
	"catrank.dev/backend/internal/model/types"
	"catrank.dev/backend/internal/server/svr"
	"catrank.dev/backend/internal/service"
	"catrank.dev/backend/internal/util/rekuest"
)

const (
	mimeCSV  = "text/csv; charset=utf-8"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type Export struct {
	fx.In

	ExportService *service.Export
}

func RegisterExport(v1 *svr.V1, c Export) {
	group := v1.Group("/export")
	group.Get("/summary.csv", c.GetSummaryCSV)
	group.Get("/latest.csv", c.GetLatestCSV)
	group.Get("/heatmap.xlsx", c.GetHeatmapXLSX)
}

func attachment(ctx *fiber.Ctx, contentType, filename string, body *bytes.Buffer) error {
	ctx.Set(fiber.HeaderContentType, contentType)
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return ctx.Send(body.Bytes())
}

func stamp() string {
	return time.Now().UTC().Format(constant.SnapshotTimeLayout)
}

// @Summary      Export the Summary Table as CSV
// @Description  Accepts the same query parameters as /api/v1/summary. The file starts with a UTF-8 BOM.
// @Tags         Export
// @Produce      text/csv
// @Param        sort   query     string  false  "Sort key"
// @Param        order  query     string  false  "asc or desc"  Enums(asc, desc)
// @Param        lang   query     string  false  "Label language"  Enums(en, ja)
// @Success      200    {file}    file
// @Failure      400    {object}  apperr.Error  "Invalid query"
// @Router       /api/v1/export/summary.csv [GET]
func (c *Export) GetSummaryCSV(ctx *fiber.Ctx) error {
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

	var buf bytes.Buffer
	if err := c.ExportService.SummaryCSV(ctx.UserContext(), &buf, q, lang); err != nil {
		return err
	}
	return attachment(ctx, mimeCSV, "category_summary_"+stamp()+".csv", &buf)
}

// @Summary      Export the Latest Snapshot as CSV
// @Description  The file uses the history file format and name, so it can be fed back to the import command.
// @Tags         Export
// @Produce      text/csv
// @Success      200  {file}    file
// @Failure      503  {object}  apperr.Error  "No snapshot has been collected yet"
// @Router       /api/v1/export/latest.csv [GET]
func (c *Export) GetLatestCSV(ctx *fiber.Ctx) error {
	var buf bytes.Buffer
	filename, err := c.ExportService.LatestCSV(ctx.UserContext(), &buf)
	if err != nil {
		return err
	}
	return attachment(ctx, mimeCSV, filename, &buf)
}

// @Summary      Export the Viewer Heatmap as a Workbook
// @Tags         Export
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        top_n  query     int     false  "Number of categories, 5 to 50"
// @Param        lang   query     string  false  "Label language"  Enums(en, ja)
// @Success      200    {file}    file
// @Failure      503    {object}  apperr.Error  "No snapshot has been collected yet"
// @Router       /api/v1/export/heatmap.xlsx [GET]
func (c *Export) GetHeatmapXLSX(ctx *fiber.Ctx) error {
	_, n, err := topNOf(ctx, constant.HeatmapTopN)
	if err != nil {
		return err
	}
	lang, err := langOf(ctx)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := c.ExportService.HeatmapXLSX(ctx.UserContext(), &buf, n, lang); err != nil {
		return err
	}
	return attachment(ctx, mimeXLSX, "category_heatmap_"+stamp()+".xlsx", &buf)
}
