package collect

import (
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"go.uber.org/fx"

	cliapp "catrank.dev/backend/cmd/app/cli"
	"catrank.dev/backend/internal/service"
)

type CommandDeps struct {
	fx.In

	CollectorService *service.Collector
}

func Command() *cli.Command {
	depsFn := cliapp.DepsFn[CommandDeps]()
	return &cli.Command{
		Name:  "collect",
		Usage: "capture one ranking snapshot from the upstream API and store it",
		Action: func(ctx *cli.Context) error {
			deps := depsFn()
			resp, err := deps.CollectorService.Collect(ctx.Context)
			if err != nil {
				return err
			}

			log.Info().
				Str("evt.name", "cli.collect").
				Int64("snapshotId", resp.SnapshotID).
				Str("takenAt", resp.TakenAt).
				Int("categories", resp.Categories).
				Bool("skipped", resp.Skipped).
				Msg("collection finished")
			return nil
		},
	}
}
