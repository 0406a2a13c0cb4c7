package calcwkr

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"catrank.dev/backend/internal/app/appconfig"
)

func newHeartbeatServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestJobBeatsOnSuccess(t *testing.T) {
	srv, hits := newHeartbeatServer(t)
	w := &Worker{
		timeout:   time.Second,
		heartbeat: appconfig.WorkerHeartbeatURLMap{JobCollect: srv.URL},
	}

	ran := false
	w.job(JobCollect, func(ctx context.Context) error {
		ran = true
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return nil
	})()

	assert.True(t, ran)
	assert.Equal(t, 1, w.Count())
	assert.Equal(t, int32(1), hits.Load())
}

func TestJobSkipsBeatOnFailure(t *testing.T) {
	srv, hits := newHeartbeatServer(t)
	w := &Worker{
		timeout:   time.Second,
		heartbeat: appconfig.WorkerHeartbeatURLMap{JobCollect: srv.URL},
	}

	w.job(JobCollect, func(ctx context.Context) error {
		return errors.New("upstream unavailable")
	})()

	assert.Equal(t, 0, w.Count())
	assert.Equal(t, int32(0), hits.Load())
}

func TestJobWithoutHeartbeat(t *testing.T) {
	srv, hits := newHeartbeatServer(t)
	w := &Worker{
		timeout:   time.Second,
		heartbeat: appconfig.WorkerHeartbeatURLMap{JobCollect: srv.URL},
	}

	w.job(JobArchive, func(ctx context.Context) error { return nil })()

	assert.Equal(t, 1, w.Count())
	assert.Equal(t, int32(0), hits.Load())
}
