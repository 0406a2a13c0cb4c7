package app

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"catrank.dev/backend/cmd/app/cli/analyze"
	"catrank.dev/backend/cmd/app/cli/collect"
	"catrank.dev/backend/cmd/app/cli/importer"
	"catrank.dev/backend/cmd/app/cli/runscript"
	"catrank.dev/backend/cmd/app/server"
	"catrank.dev/backend/internal/pkg/bininfo"
)

func Run() {
	app := &cli.App{
		Name:        "catrank",
		Description: "Twitch category ranking analytics backend. Built with Go, fiber, bun and go.uber.org/fx. Uses NATS as MQ and Redis as state synchronization.",
		Version:     bininfo.Version,
		Commands: []*cli.Command{
			server.Command(),
			collect.Command(),
			importer.Command(),
			analyze.Command(),
			runscript.Command(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("failed to run app")
	}
}
