package importer

import (
	"github.com/urfave/cli/v2"
	"go.uber.org/fx"

	cliapp "catrank.dev/backend/cmd/app/cli"
	"catrank.dev/backend/internal/service"
)

type CommandDeps struct {
	fx.In

	SnapshotService *service.Snapshot
}

func Command() *cli.Command {
	depsFn := cliapp.DepsFn[CommandDeps]()
	return &cli.Command{
		Name:  "import",
		Usage: "import a directory of ranking history files into the database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "dir",
				Usage:    "directory holding twitch_ranking_*.csv files",
				Value:    ".",
				Required: false,
			},
		},
		Action: func(ctx *cli.Context) error {
			return run(ctx, depsFn(), ctx.String("dir"))
		},
	}
}
