package cache

import (
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"gopkg.in/guregu/null.v3"

	"catrank.dev/backend/internal/core/analytics"
	"catrank.dev/backend/internal/model"
	"catrank.dev/backend/internal/pkg/cache"
)

var ErrUnknownCache = errors.New("unknown cache name")

type Flusher func() error

var (
	// keyed by policy fingerprint and dataset version
	SummaryTable *cache.Set[[]*analytics.CategorySummary]
	// keyed by dataset version
	ObservationSet *cache.Set[[]analytics.Observation]

	LastModifiedTime *cache.Set[time.Time]

	DatasetVersion *cache.Singular[model.DatasetVersion]

	once sync.Once

	SetMap             map[string]Flusher
	SingularFlusherMap map[string]Flusher
)

func Initialize(client *redis.Client) {
	once.Do(func() {
		initializeCaches(client)
	})
}

// Delete flushes the named cache. Sets are always flushed as a whole.
func Delete(name string, key null.String) error {
	if flusher, ok := SingularFlusherMap[name]; ok && !key.Valid {
		return flusher()
	}
	if flusher, ok := SetMap[name]; ok {
		return flusher()
	}
	return errors.Wrap(ErrUnknownCache, name)
}

// FlushAll empties every cache.
func FlushAll() error {
	for name, flusher := range SetMap {
		if err := flusher(); err != nil {
			return errors.Wrap(err, name)
		}
	}
	for name, flusher := range SingularFlusherMap {
		if err := flusher(); err != nil {
			return errors.Wrap(err, name)
		}
	}
	return nil
}

// Names lists every registered cache.
func Names() []string {
	names := make([]string, 0, len(SetMap)+len(SingularFlusherMap))
	for name := range SetMap {
		names = append(names, name)
	}
	for name := range SingularFlusherMap {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func initializeCaches(client *redis.Client) {
	SetMap = make(map[string]Flusher)
	SingularFlusherMap = make(map[string]Flusher)

	// analytics
	SummaryTable = cache.NewSet[[]*analytics.CategorySummary](client, "summaryTable#policy|datasetVersion")
	ObservationSet = cache.NewSet[[]analytics.Observation](client, "observationSet#datasetVersion")
	SetMap["summaryTable#policy|datasetVersion"] = SummaryTable.Flush
	SetMap["observationSet#datasetVersion"] = ObservationSet.Flush

	// snapshot
	DatasetVersion = cache.NewSingular[model.DatasetVersion]("datasetVersion")
	SingularFlusherMap["datasetVersion"] = DatasetVersion.Delete

	// last modified time
	LastModifiedTime = cache.NewSet[time.Time](client, "lastModifiedTime")
	SetMap["lastModifiedTime"] = LastModifiedTime.Flush
}
