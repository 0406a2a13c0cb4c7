package importer

import (
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"catrank.dev/backend/internal/constant"
	"catrank.dev/backend/internal/pkg/rankcsv"
)

func run(ctx *cli.Context, deps CommandDeps, dir string) error {
	snapshots, err := rankcsv.ReadDir(dir)
	if err != nil {
		return err
	}

	var created, skipped int
	for _, s := range snapshots {
		stored, ok, err := deps.SnapshotService.Store(ctx.Context, s.Time, constant.SnapshotSourceImport, s.Rows)
		if err != nil {
			log.Error().Err(err).Str("path", s.Path).Msg("failed to import history file")
			return err
		}
		if ok {
			created++
		} else {
			skipped++
			log.Debug().
				Str("evt.name", "cli.import.skip").
				Str("path", s.Path).
				Int64("snapshotId", stored.SnapshotID).
				Msg("snapshot already stored")
		}
	}

	log.Info().
		Str("evt.name", "cli.import").
		Str("dir", dir).
		Int("created", created).
		Int("skipped", skipped).
		Msg("import finished")
	return nil
}
