package service

import (
	"context"
	"sort"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"catrank.dev/backend/internal/app/appconfig"
	"catrank.dev/backend/internal/constant"
	"catrank.dev/backend/internal/core/analytics"
	"catrank.dev/backend/internal/model/types"
	"catrank.dev/backend/internal/pkg/async"
	"catrank.dev/backend/internal/pkg/helix"
	"catrank.dev/backend/internal/pkg/observability"
)

var ErrCollectorNotConfigured = errors.New("collector: upstream client id or access token is not configured")

type Collector struct {
	SnapshotService *Snapshot

	helix       *helix.Client
	topN        int
	concurrency int
	configured  bool
	lock        *redsync.Mutex
}

func NewCollector(conf *appconfig.Config, snapshotService *Snapshot, rs *redsync.Redsync) *Collector {
	return &Collector{
		SnapshotService: snapshotService,
		helix:           helix.NewClient(conf.HelixBaseURL, conf.HelixClientID, conf.HelixAccessToken, conf.CollectorRequestTimeout),
		topN:            conf.CollectorTopN,
		concurrency:     conf.CollectorConcurrency,
		configured:      conf.HelixClientID != "" && conf.HelixAccessToken != "",
		lock:            rs.NewMutex(constant.CollectorLockName, redsync.WithExpiry(constant.CollectorLockTTL), redsync.WithTries(1)),
	}
}

type rankedGame struct {
	order int
	game  helix.Game
	stats helix.StreamStats
}

// BuildRanking orders categories by viewers descending and assigns ranks
// 1..n. Ties keep upstream order.
func BuildRanking(games []rankedGame) []analytics.Row {
	sorted := make([]rankedGame, len(games))
	copy(sorted, games)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].stats.Viewers != sorted[j].stats.Viewers {
			return sorted[i].stats.Viewers > sorted[j].stats.Viewers
		}
		return sorted[i].order < sorted[j].order
	})

	rows := make([]analytics.Row, len(sorted))
	for i, g := range sorted {
		rows[i] = analytics.Row{
			Rank:         i + 1,
			CategoryName: g.game.Name,
			Streamers:    g.stats.Streamers,
			Viewers:      g.stats.Viewers,
		}
	}
	return rows
}

// Collect captures one snapshot from upstream and stores it. When another
// instance holds the collector lock the run is skipped.
func (s *Collector) Collect(ctx context.Context) (*types.CollectResponse, error) {
	if !s.configured {
		return nil, ErrCollectorNotConfigured
	}

	if err := s.lock.LockContext(ctx); err != nil {
		log.Info().
			Str("evt.name", "collector.skipped").
			Err(err).
			Msg("another collection is in progress")
		return &types.CollectResponse{Skipped: true}, nil
	}
	defer func() {
		if _, err := s.lock.UnlockContext(context.Background()); err != nil {
			log.Warn().Err(err).Msg("failed to release collector lock")
		}
	}()

	start := time.Now()
	result, err := s.collect(ctx)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	observability.CollectDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	return result, err
}

func (s *Collector) collect(ctx context.Context) (*types.CollectResponse, error) {
	takenAt := time.Now().UTC().Truncate(time.Minute)

	games, err := s.helix.TopGames(ctx, s.topN)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list top categories")
	}

	indexed := make([]rankedGame, len(games))
	for i, g := range games {
		indexed[i] = rankedGame{order: i, game: g}
	}
	counted, err := async.Map(indexed, s.concurrency, func(g rankedGame) (rankedGame, error) {
		stats, err := s.helix.StreamStats(ctx, g.game.ID)
		if err != nil {
			return g, errors.Wrapf(err, "category %s", g.game)
		}
		g.stats = stats
		return g, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to count streams")
	}

	rows := BuildRanking(counted)
	observability.CollectCategories.Set(float64(len(rows)))

	snapshot, _, err := s.SnapshotService.Store(ctx, takenAt, constant.SnapshotSourceCollector, rows)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("evt.name", "collector.finished").
		Int("categories", len(rows)).
		Dur("took", time.Since(takenAt)).
		Msg("snapshot collected")

	return &types.CollectResponse{
		SnapshotID: snapshot.SnapshotID,
		TakenAt:    snapshot.TakenAt.Format(time.RFC3339),
		Categories: len(rows),
	}, nil
}
