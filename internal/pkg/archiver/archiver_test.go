package archiver

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	objects map[string][]byte
}

func (m *memStore) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if _, ok := m.objects[aws.ToString(in.Key)]; !ok {
		return nil, &smithy.GenericAPIError{Code: "NotFound", Message: "not found"}
	}
	return &s3.HeadObjectOutput{LastModified: aws.Time(time.Unix(0, 0))}, nil
}

func (m *memStore) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	m.objects[aws.ToString(in.Key)] = b
	return &s3.PutObjectOutput{}, nil
}

func TestArchiverRoundTrip(t *testing.T) {
	store := &memStore{objects: map[string][]byte{}}
	a := &Archiver{Store: store, S3Bucket: "bucket", S3Prefix: "v1/", Kind: "observations"}

	ctx := context.Background()
	day := time.Date(2024, 3, 9, 23, 30, 0, 0, time.FixedZone("JST", 9*3600))
	require.NoError(t, a.Prepare(ctx, day))
	assert.Equal(t, "v1/observations/observations_2024-03-09"+FileExt, a.ObjectKey())

	go func() {
		ch := a.WriterCh()
		ch <- map[string]any{"name": "Just Chatting", "viewers": 1000}
		ch <- map[string]any{"name": "Fortnite", "viewers": 500}
		close(ch)
	}()
	require.NoError(t, a.Collect(ctx))
	assert.Equal(t, 2, a.Written())

	raw, ok := store.objects[a.ObjectKey()]
	require.True(t, ok)

	zr, err := gzip.NewReader(bytes.NewReader(raw))
	require.NoError(t, err)
	var lines []string
	sc := bufio.NewScanner(zr)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	require.NoError(t, sc.Err())
	assert.Equal(t, []string{
		`{"name":"Just Chatting","viewers":1000}`,
		`{"name":"Fortnite","viewers":500}`,
	}, lines)
}

func TestArchiverRefusesExisting(t *testing.T) {
	store := &memStore{objects: map[string][]byte{
		"observations/observations_2024-03-09" + FileExt: {},
	}}
	a := &Archiver{Store: store, S3Bucket: "bucket", Kind: "observations"}

	err := a.Prepare(context.Background(), time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrFileAlreadyExists)
}
