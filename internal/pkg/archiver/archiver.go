package archiver

import (
	"compress/gzip"
	"context"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	FileExt                = ".jsonl.gz"
	LocalTempDirPattern    = "catrank-archiver-*"
	ArchiverChanBufferSize = 16
)

var ErrFileAlreadyExists = errors.New("file already exists")

// ObjectStore is the subset of the S3 client the archiver needs.
type ObjectStore interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var _ ObjectStore = (*s3.Client)(nil)

// Archiver writes one UTC day of records as gzipped JSON lines and uploads
// the result as a single object. An Archiver is single use.
type Archiver struct {
	Store    ObjectStore
	S3Bucket string

	// S3Prefix has no leading slash and usually a trailing one, e.g. "v1/" or "".
	S3Prefix string

	// Kind names the record family and becomes the first path segment.
	Kind string

	date         time.Time
	localTempDir string
	writerCh     chan any
	written      int
	logger       *zerolog.Logger
}

func (a *Archiver) initLogger() {
	if a.logger == nil {
		logger := log.With().
			Str("module", "archiver").
			Str("kind", a.Kind).
			Logger()
		a.logger = &logger
	}
}

// ObjectKey returns the key the archive for the prepared date is stored under.
func (a *Archiver) ObjectKey() string {
	return a.S3Prefix + a.canonicalFilePath()
}

// Written reports how many records were encoded by Collect.
func (a *Archiver) Written() int {
	return a.written
}

func (a *Archiver) canonicalFilePath() string {
	day := a.date.UTC().Format("2006-01-02")
	return a.Kind + "/" + a.Kind + "_" + day + FileExt
}

func (a *Archiver) Prepare(ctx context.Context, date time.Time) error {
	a.initLogger()

	a.logger.Info().Str("date", date.UTC().Format("2006-01-02")).Msg("preparing archiver")
	a.date = date
	a.writerCh = make(chan any, ArchiverChanBufferSize)

	if err := a.assertObjectNonExistence(ctx); err != nil {
		return errors.Wrap(err, "failed to assertObjectNonExistence")
	}

	if err := a.createLocalTempDir(); err != nil {
		return errors.Wrap(err, "failed to createLocalTempDir")
	}
	a.logger.Trace().Str("localTempDir", a.localTempDir).Msg("created local temp dir")

	return nil
}

func (a *Archiver) assertObjectNonExistence(ctx context.Context) error {
	key := a.ObjectKey()
	object, err := a.Store.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var ae smithy.APIError
		if errors.As(err, &ae) && ae.ErrorCode() == "NotFound" {
			return nil
		}
		return errors.Wrap(err, "failed to invoke HeadObject")
	}
	return errors.Wrap(ErrFileAlreadyExists, fmt.Sprintf("object %q already exists with LastModified %v", key, aws.ToTime(object.LastModified)))
}

func (a *Archiver) createLocalTempDir() error {
	dir, err := os.MkdirTemp(os.TempDir(), LocalTempDirPattern)
	if err != nil {
		return errors.Wrap(err, "failed to create temporary directory")
	}

	a.localTempDir = dir
	return nil
}

// WriterCh is where records are sent. Caller MUST close it when done.
func (a *Archiver) WriterCh() chan<- any {
	return a.writerCh
}

// Collect drains WriterCh into the local archive and uploads it. It must run
// on a different goroutine from the sender, and only once.
func (a *Archiver) Collect(ctx context.Context) error {
	defer func() {
		if err := a.Cleanup(); err != nil {
			a.logger.Warn().Err(err).Msg("failed to clean up local temp dir")
		}
	}()

	if err := a.archiveToLocalFile(ctx); err != nil {
		return errors.Wrap(err, "failed to archiveToLocalFile")
	}
	a.logger.Trace().Int("records", a.written).Msg("archived to local file")

	if err := a.upload(ctx); err != nil {
		return errors.Wrap(err, "failed to upload")
	}
	a.logger.Info().Str("key", a.ObjectKey()).Int("records", a.written).Msg("archive uploaded")

	return nil
}

func (a *Archiver) archiveToLocalFile(ctx context.Context) error {
	localTempFilePath := path.Join(a.localTempDir, a.canonicalFilePath())
	if err := os.MkdirAll(path.Dir(localTempFilePath), 0o755); err != nil {
		return errors.Wrap(err, "failed to create directory")
	}

	file, err := os.OpenFile(localTempFilePath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.Wrap(err, "failed to open file")
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	jsonEncoder := json.NewEncoder(gzipWriter)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case item, ok := <-a.writerCh:
			if !ok {
				return gzipWriter.Close()
			}
			if err := jsonEncoder.Encode(item); err != nil {
				return errors.Wrap(err, "failed to encode item")
			}
			a.written++
		}
	}
}

func (a *Archiver) upload(ctx context.Context) error {
	file, err := os.Open(path.Join(a.localTempDir, a.canonicalFilePath()))
	if err != nil {
		return errors.Wrap(err, "failed to open file")
	}
	defer file.Close()

	if _, err := a.Store.PutObject(ctx, &s3.PutObjectInput{
		Bucket:            aws.String(a.S3Bucket),
		Key:               aws.String(a.ObjectKey()),
		Body:              file,
		ContentType:       aws.String("application/gzip"),
		StorageClass:      types.StorageClassStandardIa,
		ChecksumAlgorithm: types.ChecksumAlgorithmSha256,
	}); err != nil {
		return errors.Wrap(err, "failed to invoke PutObject")
	}
	return nil
}

func (a *Archiver) Cleanup() error {
	if a.localTempDir == "" {
		return nil
	}
	if err := os.RemoveAll(a.localTempDir); err != nil {
		return errors.Wrap(err, "failed to remove temporary directory")
	}
	return nil
}
