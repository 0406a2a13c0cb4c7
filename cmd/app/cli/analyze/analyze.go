package analyze

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"catrank.dev/backend/internal/constant"
	"catrank.dev/backend/internal/core/analytics"
	"catrank.dev/backend/internal/pkg/rankcsv"
	"catrank.dev/backend/internal/service"
)

const (
	SummaryFile    = "category_summary.csv"
	TrendFile      = "viewers_trend_top10.csv"
	WorkbookFile   = "heatmap_top50_viewers.xlsx"
	StrugglingFile = "struggling_categories.csv"

	printedRows = 10
)

type Options struct {
	Dir  string
	Out  string
	Lang string

	TopN     int
	TrendN   int
	MinCount int

	ZeroGuard analytics.ZeroGuard
}

// Run reads every history file under opts.Dir and writes the summary table,
// the viewer trend, the heatmap workbook and, when any category struggles,
// the struggling list into opts.Out. A short report goes to stdout.
func Run(opts Options, stdout io.Writer) error {
	snapshots, err := rankcsv.ReadDir(opts.Dir)
	if err != nil {
		return err
	}
	obs := rankcsv.Observations(snapshots, opts.ZeroGuard)

	policy := analytics.DefaultPolicy()
	policy.ZeroGuard = opts.ZeroGuard
	table, err := analytics.Aggregate(obs, policy)
	if err != nil {
		return err
	}
	summary, err := analytics.Apply(table, analytics.Query{MinCount: opts.MinCount})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(opts.Out, 0o755); err != nil {
		return errors.Wrap(err, "failed to create output directory")
	}

	fmt.Fprintf(stdout, "loaded %d snapshots, %d observations, %d categories\n", len(snapshots), len(obs), len(table))

	if err := writeFile(filepath.Join(opts.Out, SummaryFile), func(w io.Writer) error {
		return service.WriteSummaryCSV(w, summary, opts.Lang)
	}); err != nil {
		return err
	}

	trend := analytics.Trend(obs, analytics.MetricViewers, opts.TrendN)
	if err := writeFile(filepath.Join(opts.Out, TrendFile), func(w io.Writer) error {
		return writePivotCSV(w, trend)
	}); err != nil {
		return err
	}

	heatmap := analytics.BuildHeatmap(obs, opts.TopN)
	if err := writeFile(filepath.Join(opts.Out, WorkbookFile), func(w io.Writer) error {
		return service.WriteWorkbook(w, heatmap, summary, opts.Lang)
	}); err != nil {
		return err
	}

	struggling := analytics.Struggling(summary)
	if len(struggling) == 0 {
		fmt.Fprintln(stdout, "no struggling categories detected")
	} else if err := writeFile(filepath.Join(opts.Out, StrugglingFile), func(w io.Writer) error {
		return service.WriteSummaryCSV(w, struggling, opts.Lang)
	}); err != nil {
		return err
	}

	return printTop(stdout, summary, opts.Lang)
}

func writeFile(path string, write func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}

	log.Info().Str("evt.name", "cli.analyze.write").Str("path", path).Msg("report written")
	return f.Close()
}

// writePivotCSV writes one row per snapshot time. Absent cells stay blank.
func writePivotCSV(w io.Writer, p *analytics.PivotTable) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"snapshot_time"}, p.Categories...)); err != nil {
		return err
	}
	for i, t := range p.Times {
		record := make([]string, 0, len(p.Categories)+1)
		record = append(record, t.Format(constant.SnapshotTimeLayout))
		for _, cell := range p.Cells[i] {
			if cell == nil {
				record = append(record, "")
				continue
			}
			record = append(record, strconv.FormatFloat(*cell, 'f', -1, 64))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func printTop(stdout io.Writer, summary []*analytics.CategorySummary, lang string) error {
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tcategory\tsnapshots\tviewer sum\tgrowth rate\tscore\tmarket\tgrowth")
	for i, s := range summary {
		if i == printedRows {
			break
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%.3f\t%.2f\t%s\t%s\n",
			i+1, s.CategoryName, s.Count, s.ViewerSum, s.GrowthRate, s.GrowthScore,
			s.MarketType.Label(lang), s.GrowthType.Label(lang))
	}
	return tw.Flush()
}
