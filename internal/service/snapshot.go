package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"github.com/uptrace/bun"
	"github.com/zeebo/xxh3"

	"catrank.dev/backend/internal/constant"
	"catrank.dev/backend/internal/core/analytics"
	"catrank.dev/backend/internal/model"
	"catrank.dev/backend/internal/model/types"
	"catrank.dev/backend/internal/pkg/apperr"
	"catrank.dev/backend/internal/pkg/observability"
	"catrank.dev/backend/internal/repo"
)

const (
	TaskStatusPending = "pending"
	TaskStatusDone    = "done"
	TaskStatusFailed  = "failed"

	taskStatusKeyPrefix = "snapshotTask:"
	taskStatusTTL       = 24 * time.Hour
	publishTimeout      = 2 * time.Second
)

type Snapshot struct {
	DB     *bun.DB
	Redis  *redis.Client
	NatsJS nats.JetStreamContext

	SnapshotRepo     *repo.Snapshot
	AnalyticsService *Analytics
}

func NewSnapshot(db *bun.DB, redis *redis.Client, natsJs nats.JetStreamContext, snapshotRepo *repo.Snapshot, analyticsService *Analytics) *Snapshot {
	return &Snapshot{
		DB:               db,
		Redis:            redis,
		NatsJS:           natsJs,
		SnapshotRepo:     snapshotRepo,
		AnalyticsService: analyticsService,
	}
}

// Digest fingerprints a snapshot by its time and rows.
func Digest(takenAt time.Time, rows []analytics.Row) string {
	h := xxh3.New()
	h.WriteString(takenAt.UTC().Format(time.RFC3339))
	for _, r := range rows {
		fmt.Fprintf(h, "|%d\x00%s\x00%d\x00%d", r.Rank, r.CategoryName, r.Streamers, r.Viewers)
	}
	return strconv.FormatUint(h.Sum64(), 16)
}

// RowsFromRequest converts validated request rows.
func RowsFromRequest(req *types.SnapshotIngestRequest) []analytics.Row {
	rows := make([]analytics.Row, len(req.Rows))
	for i, r := range req.Rows {
		rows[i] = analytics.Row{
			Rank:         int(r.Rank.Int64),
			CategoryName: strings.TrimSpace(r.Name.String),
			Streamers:    int(r.Streamers.Int64),
			Viewers:      int(r.Viewers.Int64),
		}
	}
	return rows
}

func checkDistinctNames(rows []analytics.Row) error {
	seen := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		if _, ok := seen[r.CategoryName]; ok {
			return errors.Wrapf(analytics.ErrDuplicateObservation, "%q appears twice in one snapshot", r.CategoryName)
		}
		seen[r.CategoryName] = struct{}{}
	}
	return nil
}

// pgUniqueViolation is the SQLSTATE postgres reports for a unique index conflict.
const pgUniqueViolation = "23505"

// storeError maps a unique index conflict to ErrDuplicateObservation: another
// snapshot with a different digest already holds rows at takenAt.
func storeError(err error, takenAt time.Time) error {
	var pgErr interface{ Field(byte) string }
	if errors.As(err, &pgErr) && pgErr.Field('C') == pgUniqueViolation {
		return errors.Wrapf(analytics.ErrDuplicateObservation, "conflicting snapshot at %s: %s",
			takenAt.Format(time.RFC3339), pgErr.Field('n'))
	}
	return errors.Wrap(err, "failed to store snapshot")
}

// Store persists a snapshot and its rows. A snapshot whose digest is already
// stored is not inserted again; created is false then.
func (s *Snapshot) Store(ctx context.Context, takenAt time.Time, source string, rows []analytics.Row) (snapshot *model.Snapshot, created bool, err error) {
	if err := checkDistinctNames(rows); err != nil {
		return nil, false, err
	}

	digest := Digest(takenAt, rows)
	existing, err := s.SnapshotRepo.GetSnapshotByDigest(ctx, digest)
	if err == nil {
		return existing, false, nil
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, false, err
	}

	snapshot = &model.Snapshot{
		TakenAt:  takenAt.UTC(),
		Source:   source,
		RowCount: len(rows),
		Digest:   digest,
	}
	observations := make([]*model.Observation, len(rows))
	for i, r := range rows {
		observations[i] = &model.Observation{
			Rank:         r.Rank,
			CategoryName: r.CategoryName,
			Streamers:    r.Streamers,
			Viewers:      r.Viewers,
		}
	}

	err = s.DB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return s.SnapshotRepo.CreateSnapshot(ctx, tx, snapshot, observations)
	})
	if err != nil {
		return nil, false, storeError(err, snapshot.TakenAt)
	}

	observability.IngestedObservations.WithLabelValues(source).Add(float64(len(rows)))
	s.AnalyticsService.Invalidate()

	log.Info().
		Str("evt.name", "snapshot.stored").
		Int64("snapshotId", snapshot.SnapshotID).
		Time("takenAt", snapshot.TakenAt).
		Str("source", source).
		Int("rows", len(rows)).
		Msg("snapshot stored")

	return snapshot, true, nil
}

// Submit queues a snapshot for ingestion and returns the task id.
func (s *Snapshot) Submit(ctx context.Context, req *types.SnapshotIngestRequest, idempotencyKey string) (string, error) {
	rows := RowsFromRequest(req)
	if err := checkDistinctNames(rows); err != nil {
		return "", apperr.ErrInvalidReq.Msg("invalid request: %s", err)
	}

	now := time.Now()
	if req.TakenAt == nil {
		req.TakenAt = &now
	}
	if req.Source == "" {
		req.Source = constant.SnapshotSourceAPI
	}

	task := &types.SnapshotIngestTask{
		TaskID:     strings.ToLower(ulid.Make().String()),
		ReceivedAt: now.UnixMicro(),
		Request:    req,
	}
	payload, err := json.Marshal(task)
	if err != nil {
		return "", err
	}

	msgID := idempotencyKey
	if msgID == "" {
		msgID = Digest(*req.TakenAt, rows)
	}

	if err := s.setTaskStatus(ctx, task.TaskID, map[string]any{"status": TaskStatusPending, "receivedAt": now.UTC().Format(time.RFC3339)}); err != nil {
		return "", err
	}

	pub, err := s.NatsJS.PublishAsync(constant.SnapshotSubjectPrefix+"."+constant.SnapshotSourceAPI, payload, nats.MsgId(msgID))
	if err != nil {
		return "", err
	}

	select {
	case err := <-pub.Err():
		return "", errors.Wrap(err, "failed to publish snapshot task")
	case <-pub.Ok():
		return task.TaskID, nil
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(publishTimeout):
		return "", errors.New("timeout waiting for NATS response")
	}
}

// ConsumeTask stores the snapshot carried by a queued task and records the
// outcome under the task id.
func (s *Snapshot) ConsumeTask(ctx context.Context, task *types.SnapshotIngestTask) error {
	if task.Request == nil || task.Request.TakenAt == nil {
		return errors.New("snapshot task carries no request")
	}

	snapshot, created, err := s.Store(ctx, *task.Request.TakenAt, task.Request.Source, RowsFromRequest(task.Request))
	if err != nil {
		if serr := s.setTaskStatus(ctx, task.TaskID, map[string]any{"status": TaskStatusFailed, "error": err.Error()}); serr != nil {
			log.Warn().Err(serr).Str("taskId", task.TaskID).Msg("failed to record task failure")
		}
		return err
	}

	return s.setTaskStatus(ctx, task.TaskID, map[string]any{
		"status":     TaskStatusDone,
		"snapshotId": snapshot.SnapshotID,
		"duplicate":  !created,
	})
}

// TaskStatus returns the JSON status document of a task.
func (s *Snapshot) TaskStatus(ctx context.Context, taskID string) (json.RawMessage, error) {
	raw, err := s.Redis.Get(ctx, taskStatusKeyPrefix+taskID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, apperr.ErrNotFound
	} else if err != nil {
		return nil, err
	}
	if !gjson.Valid(raw) {
		return nil, errors.Errorf("corrupt status document for task %s", taskID)
	}
	return json.RawMessage(raw), nil
}

func (s *Snapshot) setTaskStatus(ctx context.Context, taskID string, fields map[string]any) error {
	key := taskStatusKeyPrefix + taskID
	doc, err := s.Redis.Get(ctx, key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	if doc == "" {
		doc, _ = sjson.Set(`{}`, "taskId", taskID)
	}
	for path, value := range fields {
		if doc, err = sjson.Set(doc, path, value); err != nil {
			return err
		}
	}
	doc, _ = sjson.Set(doc, "updatedAt", time.Now().UTC().Format(time.RFC3339))
	return s.Redis.Set(ctx, key, doc, taskStatusTTL).Err()
}
