package runscript

import (
	"github.com/urfave/cli/v2"

	cliapp "catrank.dev/backend/cmd/app/cli"
	script_archive_snapshots "catrank.dev/backend/cmd/app/cli/runscript/scripts/archive_snapshots"
)

func Command() *cli.Command {
	return &cli.Command{
		Name:        "run-script",
		Description: "run maintenance go scripts",
		Subcommands: []*cli.Command{
			script_archive_snapshots.Command(cliapp.DepsFn[script_archive_snapshots.CommandDeps]()),
		},
	}
}
