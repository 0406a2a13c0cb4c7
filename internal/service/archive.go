package service

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-redsync/redsync/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"catrank.dev/backend/internal/app/appconfig"
	"catrank.dev/backend/internal/constant"
	"catrank.dev/backend/internal/pkg/archiver"
	"catrank.dev/backend/internal/repo"
)

const ArchiveKindSnapshots = "snapshots"

var ErrArchiveDisabled = errors.New("archive: no bucket configured")

type Archive struct {
	SnapshotRepo    *repo.Snapshot
	ObservationRepo *repo.Observation

	store     archiver.ObjectStore
	bucket    string
	prefix    string
	batchSize int
	lock      *redsync.Mutex
}

func NewArchive(conf *appconfig.Config, snapshotRepo *repo.Snapshot, observationRepo *repo.Observation, rs *redsync.Redsync) (*Archive, error) {
	a := &Archive{
		SnapshotRepo:    snapshotRepo,
		ObservationRepo: observationRepo,
		bucket:          conf.ArchiveS3Bucket,
		prefix:          conf.ArchiveS3Prefix,
		batchSize:       max(conf.ArchiveBatchSize, 1),
		lock:            rs.NewMutex(constant.ArchiveLockName, redsync.WithExpiry(30*time.Minute), redsync.WithTries(2)),
	}
	if conf.ArchiveS3Bucket == "" {
		return a, nil
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(conf.ArchiveS3Region)}
	if conf.AWSAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(conf.AWSAccessKey, conf.AWSSecretKey, "")))
	}
	cfg, err := config.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load aws config")
	}
	a.store = s3.NewFromConfig(cfg)
	return a, nil
}

func (s *Archive) Enabled() bool {
	return s.store != nil
}

// ArchiveYesterday archives the previous UTC day.
func (s *Archive) ArchiveYesterday(ctx context.Context) error {
	return s.ArchiveByDate(ctx, time.Now().UTC().AddDate(0, 0, -1))
}

// ArchiveByDate uploads every snapshot taken on the UTC day of date, with its
// observations, as one gzipped JSON lines object. An existing object is left
// untouched.
func (s *Archive) ArchiveByDate(ctx context.Context, date time.Time) error {
	if !s.Enabled() {
		return ErrArchiveDisabled
	}

	if err := s.lock.LockContext(ctx); err != nil {
		return errors.Wrap(err, "failed to acquire lock")
	}
	defer s.lock.UnlockContext(context.Background()) //nolint:errcheck

	a := &archiver.Archiver{
		Store:    s.store,
		S3Bucket: s.bucket,
		S3Prefix: s.prefix,
		Kind:     ArchiveKindSnapshots,
	}
	if err := a.Prepare(ctx, date); err != nil {
		if errors.Is(err, archiver.ErrFileAlreadyExists) {
			log.Info().
				Str("evt.name", "archive.snapshots").
				Str("date", date.UTC().Format("2006-01-02")).
				Msg("already archived")
			return nil
		}
		return errors.Wrap(err, "failed to prepare snapshots archiver")
	}

	collectCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	eg, egCtx := errgroup.WithContext(collectCtx)
	eg.Go(func() error {
		return a.Collect(egCtx)
	})

	if err := s.populate(egCtx, a.WriterCh(), date); err != nil {
		// abandon the partial archive instead of uploading it
		cancel()
		_ = eg.Wait()
		return errors.Wrap(err, "failed to populate snapshots")
	}

	err := eg.Wait()
	log.Info().
		Str("evt.name", "archive.finished").
		Str("key", a.ObjectKey()).
		Int("records", a.Written()).
		Err(err).
		Msg("finished archiving")
	return err
}

func (s *Archive) populate(ctx context.Context, ch chan<- any, date time.Time) error {
	day := date.UTC().Truncate(24 * time.Hour)
	snapshots, err := s.SnapshotRepo.GetSnapshotsBetween(ctx, day, day.Add(24*time.Hour))
	if err != nil {
		return err
	}

	for page, batch := range lo.Chunk(snapshots, s.batchSize) {
		for _, snapshot := range batch {
			observations, err := s.ObservationRepo.GetObservationsBySnapshotID(ctx, snapshot.SnapshotID)
			if err != nil {
				return errors.Wrapf(err, "snapshot %d", snapshot.SnapshotID)
			}
			record := *snapshot
			record.Observations = observations

			select {
			case ch <- &record:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		log.Debug().
			Str("evt.name", "archive.populate.snapshots").
			Int("page", page).
			Int("count", len(batch)).
			Msg("queued snapshots")
	}
	close(ch)
	return nil
}
