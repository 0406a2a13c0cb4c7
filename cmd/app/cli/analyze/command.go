package analyze

import (
	"github.com/urfave/cli/v2"

	"catrank.dev/backend/internal/core/analytics"
)

func Command() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "analyze a directory of ranking history files without touching any infrastructure",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Usage: "directory holding twitch_ranking_*.csv files", Value: "."},
			&cli.StringFlag{Name: "out", Usage: "directory reports are written to", Value: "."},
			&cli.StringFlag{Name: "lang", Usage: "language of market and growth labels", Value: "en"},
			&cli.IntFlag{Name: "top-n", Usage: "categories shown in the trend table and the heatmap", Value: 50},
			&cli.IntFlag{Name: "trend-n", Usage: "categories in the viewer trend table", Value: 10},
			&cli.IntFlag{Name: "min-count", Usage: "only report categories seen in at least this many snapshots"},
			&cli.StringFlag{Name: "zero-guard", Usage: "ratio with a zero denominator: zero or one", Value: "zero"},
		},
		Action: func(ctx *cli.Context) error {
			guard, err := analytics.ParseZeroGuard(ctx.String("zero-guard"))
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			return Run(Options{
				Dir:       ctx.String("dir"),
				Out:       ctx.String("out"),
				Lang:      ctx.String("lang"),
				TopN:      ctx.Int("top-n"),
				TrendN:    ctx.Int("trend-n"),
				MinCount:  ctx.Int("min-count"),
				ZeroGuard: guard,
			}, ctx.App.Writer)
		},
	}
}
