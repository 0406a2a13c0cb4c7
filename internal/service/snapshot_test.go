package service

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"gopkg.in/guregu/null.v3"

	"catrank.dev/backend/internal/core/analytics"
	"catrank.dev/backend/internal/model/types"
)

func TestDigest(t *testing.T) {
	t0 := time.Date(2024, 3, 9, 18, 0, 0, 0, time.UTC)
	rows := []analytics.Row{{Rank: 1, CategoryName: "Chess", Streamers: 1, Viewers: 2}}

	assert.Equal(t, Digest(t0, rows), Digest(t0.In(time.FixedZone("JST", 9*3600)), rows))
	assert.NotEqual(t, Digest(t0, rows), Digest(t0.Add(time.Minute), rows))
	assert.NotEqual(t, Digest(t0, rows), Digest(t0, []analytics.Row{{Rank: 1, CategoryName: "Chess", Streamers: 1, Viewers: 3}}))
}

func TestRowsFromRequest(t *testing.T) {
	req := &types.SnapshotIngestRequest{Rows: []*types.SnapshotRow{{
		Rank:      null.IntFrom(3),
		Name:      null.StringFrom("  Chess "),
		Streamers: null.IntFrom(4),
		Viewers:   null.IntFrom(40),
	}}}

	assert.Equal(t, []analytics.Row{{Rank: 3, CategoryName: "Chess", Streamers: 4, Viewers: 40}}, RowsFromRequest(req))
}

func TestCheckDistinctNames(t *testing.T) {
	assert.NoError(t, checkDistinctNames([]analytics.Row{{CategoryName: "a"}, {CategoryName: "b"}}))
	assert.ErrorIs(t, checkDistinctNames([]analytics.Row{{CategoryName: "a"}, {CategoryName: "a"}}), analytics.ErrDuplicateObservation)
}

type pgError map[byte]string

func (e pgError) Field(k byte) string { return e[k] }
func (e pgError) Error() string       { return "ERROR: " + e['M'] + " (SQLSTATE=" + e['C'] + ")" }

func TestStoreErrorUniqueViolation(t *testing.T) {
	t0 := time.Date(2024, 3, 9, 18, 0, 0, 0, time.UTC)
	conflict := pgError{'C': "23505", 'M': "duplicate key value", 'n': "idx_observations_identity"}

	err := storeError(errors.Wrap(conflict, "insert observations"), t0)
	assert.ErrorIs(t, err, analytics.ErrDuplicateObservation)
	assert.Contains(t, err.Error(), "idx_observations_identity")

	err = storeError(pgError{'C': "57014", 'M': "canceling statement"}, t0)
	assert.NotErrorIs(t, err, analytics.ErrDuplicateObservation)
	assert.Contains(t, err.Error(), "failed to store snapshot")

	err = storeError(errors.New("connection reset"), t0)
	assert.NotErrorIs(t, err, analytics.ErrDuplicateObservation)
}
