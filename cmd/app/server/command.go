package server

import "github.com/urfave/cli/v2"

func Command() *cli.Command {
	return &cli.Command{
		Name:  "start",
		Usage: "start the API server; collector and ingestion workers run too when CATRANK_WORKER_ENABLED is set",
		Action: func(c *cli.Context) error {
			Run()
			return nil
		},
	}
}
