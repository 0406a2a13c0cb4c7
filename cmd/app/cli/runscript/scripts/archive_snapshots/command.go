package script_archive_snapshots

import (
	"github.com/urfave/cli/v2"
	"go.uber.org/fx"

	"catrank.dev/backend/internal/service"
)

type CommandDeps struct {
	fx.In

	ArchiveService *service.Archive
}

func Command(depsFn func() CommandDeps) *cli.Command {
	return &cli.Command{
		Name:        "archive_snapshots",
		Description: "archive one UTC day of snapshots to S3",
		ArgsUsage:   "<date: 2006-01-02>",
		Action: func(ctx *cli.Context) error {
			if ctx.NArg() != 1 {
				return cli.Exit("exactly one date argument is required", 1)
			}
			return run(ctx, depsFn(), ctx.Args().First())
		},
	}
}
