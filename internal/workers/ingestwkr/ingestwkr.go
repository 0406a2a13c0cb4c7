package ingestwkr

import (
	"context"
	"runtime"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"

	"catrank.dev/backend/internal/app/appconfig"
	"catrank.dev/backend/internal/constant"
	"catrank.dev/backend/internal/core/analytics"
	"catrank.dev/backend/internal/model/types"
	"catrank.dev/backend/internal/pkg/jetstream"
	"catrank.dev/backend/internal/pkg/observability"
	"catrank.dev/backend/internal/service"
)

const (
	taskTimeout    = time.Second * 30
	inProgressTick = time.Second * 10
	retryDelay     = time.Second * 15
)

type WorkerDeps struct {
	fx.In

	NatsJS          nats.JetStreamContext
	SnapshotService *service.Snapshot
}

type Worker struct {
	// count is the number of consumers
	count int

	WorkerDeps
}

func Start(conf *appconfig.Config, deps WorkerDeps, lc fx.Lifecycle) {
	if !conf.WorkerEnabled {
		log.Info().
			Str("evt.name", "worker.ingest.disabled").
			Msg("ingest worker is disabled")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan error)
	// handle & dump errors from consumers
	go func() {
		for {
			select {
			case err := <-ch:
				if err != nil {
					log.Error().Err(err).Msg("ingest worker error")
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	w := &Worker{
		WorkerDeps: deps,
	}

	consumers := conf.IngestConsumers
	if consumers <= 0 {
		consumers = runtime.NumCPU()
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			for i := 0; i < consumers; i++ {
				go func() {
					if err := w.Consumer(ctx, ch); err != nil && !errors.Is(err, context.Canceled) {
						ch <- err
					}
				}()
				w.count++
			}
			log.Info().
				Str("evt.name", "worker.ingest.started").
				Int("consumers", w.count).
				Msg("ingest worker started")
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

func (w *Worker) Consumer(ctx context.Context, ch chan error) error {
	msgChan := make(chan *nats.Msg, 16)

	subject := constant.SnapshotSubjectPrefix + ".*"
	sub, err := w.NatsJS.ChanQueueSubscribe(subject, constant.SnapshotConsumerQueue, msgChan, nats.AckWait(taskTimeout), nats.MaxAckPending(128))
	if err != nil {
		log.Err(err).Str("subject", subject).Msg("failed to subscribe")
		return err
	}
	defer sub.Unsubscribe() //nolint:errcheck

	for {
		select {
		case msg := <-msgChan:
			if err := w.handle(ctx, msg); err != nil {
				ch <- err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (w *Worker) handle(ctx context.Context, msg *nats.Msg) error {
	observability.IngestMessagingLatency.Observe(jetstream.Latency(msg, time.Now()).Seconds())

	msgID := msg.Header.Get(nats.MsgIdHdr)
	if meta, err := msg.Metadata(); err == nil {
		msgID = jetstream.MessageID(meta.Sequence)
	}

	taskCtx, cancelTask := context.WithTimeout(ctx, taskTimeout)
	defer cancelTask()

	inProgress := time.NewTicker(inProgressTick)
	defer inProgress.Stop()
	go func() {
		for {
			select {
			case <-inProgress.C:
				if err := msg.InProgress(); err != nil {
					log.Error().Err(err).Msg("failed to set msg InProgress")
				}
			case <-taskCtx.Done():
				return
			}
		}
	}()

	task := &types.SnapshotIngestTask{}
	if err := json.Unmarshal(msg.Data, task); err != nil {
		// a payload that cannot be decoded never will be
		if terr := msg.Term(); terr != nil {
			log.Error().Err(terr).Msg("failed to term")
		}
		return errors.Wrapf(err, "undecodable snapshot task %s", msgID)
	}

	start := time.Now()
	err := w.SnapshotService.ConsumeTask(taskCtx, task)
	observability.IngestDuration.
		WithLabelValues(resultOf(err)).
		Observe(time.Since(start).Seconds())

	if err != nil {
		log.Error().
			Err(err).
			Str("taskId", task.TaskID).
			Str("msgId", msgID).
			Str("task", spew.Sdump(task)).
			Msg("failed to consume snapshot task")

		if errors.Is(err, analytics.ErrDuplicateObservation) {
			if terr := msg.Term(); terr != nil {
				log.Error().Err(terr).Msg("failed to term")
			}
		} else if nerr := msg.NakWithDelay(retryDelay); nerr != nil {
			log.Error().Err(nerr).Msg("failed to nak")
		}
		return err
	}

	if err := msg.Ack(); err != nil {
		log.Error().Err(err).Msg("failed to ack")
	}

	log.Info().
		Str("evt.name", "worker.ingest.consumed").
		Str("taskId", task.TaskID).
		Str("msgId", msgID).
		Msg("snapshot task processed successfully")
	return nil
}

func resultOf(err error) string {
	if err != nil {
		return "failed"
	}
	return "ok"
}
