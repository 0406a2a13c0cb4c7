package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/zeebo/xxh3"
	"gopkg.in/guregu/null.v3"

	"catrank.dev/backend/internal/app/appconfig"
	"catrank.dev/backend/internal/core/analytics"
	"catrank.dev/backend/internal/model"
	modelcache "catrank.dev/backend/internal/model/cache"
	"catrank.dev/backend/internal/pkg/apperr"
	"catrank.dev/backend/internal/pkg/observability"
	"catrank.dev/backend/internal/repo"
)

const (
	summaryCacheTTL      = 24 * time.Hour
	datasetVersionTTL    = 30 * time.Second
	lastModifiedCacheKey = "summary"
)

type Analytics struct {
	SnapshotRepo    *repo.Snapshot
	ObservationRepo *repo.Observation

	policy            analytics.Policy
	policyFingerprint string
	window            time.Duration
}

func NewAnalytics(conf *appconfig.Config, snapshotRepo *repo.Snapshot, observationRepo *repo.Observation) (*Analytics, error) {
	policy, err := conf.AnalyticsPolicy()
	if err != nil {
		return nil, err
	}
	return &Analytics{
		SnapshotRepo:      snapshotRepo,
		ObservationRepo:   observationRepo,
		policy:            policy,
		policyFingerprint: strconv.FormatUint(xxh3.HashString(fmt.Sprintf("%+v", policy)), 36),
		window:            conf.AnalyticsHistoryWindow,
	}, nil
}

func (s *Analytics) Policy() analytics.Policy {
	return s.policy
}

// DatasetVersion reports the version of the stored snapshot set. Another
// process storing snapshots shows up within datasetVersionTTL.
func (s *Analytics) DatasetVersion(ctx context.Context) (v model.DatasetVersion, err error) {
	err = modelcache.DatasetVersion.MutexGetSet(&v, func() (model.DatasetVersion, error) {
		return s.SnapshotRepo.GetDatasetVersion(ctx)
	}, datasetVersionTTL)
	return v, err
}

// Observations returns the observation set within the history window, cached
// per dataset version.
func (s *Analytics) Observations(ctx context.Context) ([]analytics.Observation, error) {
	v, err := s.DatasetVersion(ctx)
	if err != nil {
		return nil, err
	}
	if v.Empty() {
		return []analytics.Observation{}, nil
	}

	var obs []analytics.Observation
	_, err = modelcache.ObservationSet.MutexGetSet(ctx, v.CacheKey(), &obs, func() ([]analytics.Observation, error) {
		rows, err := s.ObservationRepo.GetObservationsSince(ctx, historySince(v.LatestTakenAt.Time, s.window))
		if err != nil {
			return nil, errors.Wrap(err, "failed to load observations")
		}
		return model.Derive(rows, s.policy.ZeroGuard), nil
	}, summaryCacheTTL)
	if err != nil {
		return nil, err
	}
	return obs, nil
}

// SummaryTable aggregates and classifies the observation set.
func (s *Analytics) SummaryTable(ctx context.Context) ([]*analytics.CategorySummary, error) {
	v, err := s.DatasetVersion(ctx)
	if err != nil {
		return nil, err
	}
	if v.Empty() {
		return []*analytics.CategorySummary{}, nil
	}

	var table []*analytics.CategorySummary
	calculated, err := modelcache.SummaryTable.MutexGetSet(ctx, summaryCacheKey(s.policyFingerprint, v), &table, func() ([]*analytics.CategorySummary, error) {
		obs, err := s.Observations(ctx)
		if err != nil {
			return nil, err
		}

		timer := prometheus.NewTimer(observability.AnalyticsComputeDuration.WithLabelValues())
		defer timer.ObserveDuration()

		return analytics.Aggregate(obs, s.policy)
	}, summaryCacheTTL)
	if err != nil {
		return nil, err
	}
	if calculated {
		if err := modelcache.LastModifiedTime.Set(ctx, lastModifiedCacheKey, time.Now(), summaryCacheTTL); err != nil {
			log.Warn().Err(err).Msg("failed to record summary table modification time")
		}
	}
	return table, nil
}

// LastModified is when the summary table was last computed. It is the zero
// time when unknown.
func (s *Analytics) LastModified(ctx context.Context) time.Time {
	var t time.Time
	if err := modelcache.LastModifiedTime.Get(ctx, lastModifiedCacheKey, &t); err != nil {
		return time.Time{}
	}
	return t
}

func (s *Analytics) Summary(ctx context.Context, q analytics.Query) ([]*analytics.CategorySummary, error) {
	table, err := s.SummaryTable(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.Apply(table, q)
}

// Category returns the summary and the time series of the named category.
func (s *Analytics) Category(ctx context.Context, name string) (*analytics.CategorySummary, []analytics.Observation, error) {
	table, err := s.SummaryTable(ctx)
	if err != nil {
		return nil, nil, err
	}
	var summary *analytics.CategorySummary
	for _, row := range table {
		if row.CategoryName == name {
			summary = row
			break
		}
	}
	if summary == nil {
		return nil, nil, apperr.ErrNotFound
	}

	obs, err := s.Observations(ctx)
	if err != nil {
		return nil, nil, err
	}
	return summary, analytics.Series(obs, name), nil
}

func (s *Analytics) Market(ctx context.Context) ([]*analytics.MarketRow, error) {
	table, err := s.SummaryTable(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.MarketTable(table), nil
}

func (s *Analytics) Struggling(ctx context.Context) ([]*analytics.CategorySummary, error) {
	table, err := s.SummaryTable(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.Struggling(table), nil
}

// Latest returns the top n rows of the newest snapshot by metric.
func (s *Analytics) Latest(ctx context.Context, metric analytics.Metric, n int) (null.Time, []analytics.Observation, error) {
	obs, err := s.Observations(ctx)
	if err != nil {
		return null.Time{}, nil, err
	}
	latest, ok := analytics.LatestSnapshotTime(obs)
	if !ok {
		return null.Time{}, []analytics.Observation{}, nil
	}
	return null.TimeFrom(latest), analytics.TopAtLatest(obs, metric, n), nil
}

func (s *Analytics) Trend(ctx context.Context, metric analytics.Metric, n int) (*analytics.PivotTable, error) {
	obs, err := s.Observations(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.Trend(obs, metric, n), nil
}

func (s *Analytics) Heatmap(ctx context.Context, n int) (*analytics.Heatmap, error) {
	obs, err := s.Observations(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.BuildHeatmap(obs, n), nil
}

// Invalidate drops the cached dataset version and every cached observation
// set and summary table, so the next read picks up newly stored snapshots.
func (s *Analytics) Invalidate() {
	if err := modelcache.DatasetVersion.Delete(); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate dataset version")
	}
	if err := modelcache.ObservationSet.Flush(); err != nil {
		log.Warn().Err(err).Msg("failed to flush observation sets")
	}
	if err := modelcache.SummaryTable.Flush(); err != nil {
		log.Warn().Err(err).Msg("failed to flush summary tables")
	}
}

// Warmup computes the summary table ahead of the first request.
func (s *Analytics) Warmup(ctx context.Context) error {
	s.Invalidate()
	table, err := s.SummaryTable(ctx)
	if err != nil {
		return err
	}
	log.Info().
		Str("evt.name", "analytics.warmup").
		Int("categories", len(table)).
		Msg("summary table warmed up")
	return nil
}

func summaryCacheKey(policyFingerprint string, v model.DatasetVersion) string {
	return policyFingerprint + "|" + v.CacheKey()
}

// historySince is the lower bound of the loaded history. A zero window loads
// everything.
func historySince(latest time.Time, window time.Duration) time.Time {
	if window <= 0 {
		return time.Time{}
	}
	return latest.Add(-window)
}
