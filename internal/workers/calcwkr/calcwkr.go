package calcwkr

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"
	"go.uber.org/fx"

	"catrank.dev/backend/internal/app/appconfig"
	"catrank.dev/backend/internal/service"
)

const (
	JobCollect = "collect"
	JobArchive = "archive"
)

type WorkerDeps struct {
	fx.In

	CollectorService *service.Collector
	ArchiveService   *service.Archive
	AnalyticsService *service.Analytics
}

type Worker struct {
	// count counts runs worker has completed so far
	count int

	// timeout bounds a single run of any job
	timeout time.Duration

	heartbeat appconfig.WorkerHeartbeatURLMap

	cron *cron.Cron

	// deps
	WorkerDeps
}

func Start(conf *appconfig.Config, deps WorkerDeps, lc fx.Lifecycle) error {
	if !conf.WorkerEnabled {
		log.Info().
			Str("evt.name", "worker.calc.disabled").
			Msg("calc worker is disabled")
		return nil
	}

	w := &Worker{
		timeout:    conf.WorkerTimeout,
		heartbeat:  conf.WorkerHeartbeatURL,
		cron:       cron.New(cron.WithLocation(time.UTC)),
		WorkerDeps: deps,
	}

	if _, err := w.cron.AddFunc(conf.WorkerCollectSchedule, w.job(JobCollect, w.collect)); err != nil {
		return errors.Wrapf(err, "invalid collect schedule %q", conf.WorkerCollectSchedule)
	}
	if w.ArchiveService.Enabled() {
		if _, err := w.cron.AddFunc(conf.ArchiveSchedule, w.job(JobArchive, w.ArchiveService.ArchiveYesterday)); err != nil {
			return errors.Wrapf(err, "invalid archive schedule %q", conf.ArchiveSchedule)
		}
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go w.warmup()
			w.cron.Start()
			log.Info().
				Str("evt.name", "worker.calc.started").
				Int("jobs", len(w.cron.Entries())).
				Msg("calc worker started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			select {
			case <-w.cron.Stop().Done():
			case <-ctx.Done():
			}
			return nil
		},
	})

	return nil
}

func (w *Worker) warmup() {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	if err := w.AnalyticsService.Warmup(ctx); err != nil {
		log.Warn().
			Str("evt.name", "worker.calc.warmup").
			Err(err).
			Msg("failed to warm up the summary table")
	}
}

func (w *Worker) collect(ctx context.Context) error {
	resp, err := w.CollectorService.Collect(ctx)
	if err != nil {
		return err
	}
	if resp.Skipped {
		log.Info().
			Str("evt.name", "worker.calc.collect.skipped").
			Msg("another instance is collecting")
		return nil
	}
	log.Info().
		Str("evt.name", "worker.calc.collect").
		Int64("snapshotId", resp.SnapshotID).
		Int("categories", resp.Categories).
		Msg("snapshot collected")
	return nil
}

// job wraps f with a timeout, duration metrics and the heartbeat of name.
func (w *Worker) job(name string, f func(ctx context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		defer cancel()

		log.Info().
			Str("evt.name", "worker.calc.job.started").
			Str("job", name).
			Int("count", w.count).
			Msg("worker job started")

		if err := observeRunDuration(name, func() error { return f(ctx) }); err != nil {
			log.Error().
				Str("evt.name", "worker.calc.job.failed").
				Str("job", name).
				Err(err).
				Msg("worker job failed")
			return
		}

		w.count++
		w.beat(name)
	}
}

// beat reports a successful run to the heartbeat URL configured for job, if any.
func (w *Worker) beat(job string) {
	u, ok := w.heartbeat[job]
	if !ok || u == "" {
		return
	}

	status, _, err := fasthttp.GetTimeout(nil, u, 10*time.Second)
	if err != nil || status >= fasthttp.StatusBadRequest {
		log.Warn().
			Str("evt.name", "worker.calc.heartbeat.failed").
			Str("job", job).
			Int("status", status).
			Err(err).
			Msg("failed to send heartbeat")
	}
}

func (w *Worker) Count() int {
	return w.count
}
