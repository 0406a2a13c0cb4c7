package analyze

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catrank.dev/backend/internal/core/analytics"
	"catrank.dev/backend/internal/pkg/rankcsv"
)

func testLogger(t *testing.T) {
	prev := log.Logger
	log.Logger = zerolog.New(zerolog.NewTestWriter(t))
	t.Cleanup(func() { log.Logger = prev })
}

func writeHistory(t *testing.T, dir string, at time.Time, rows []analytics.Row) {
	t.Helper()
	f, err := os.Create(filepath.Join(dir, rankcsv.FileName(at)))
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, rankcsv.Write(f, rows))
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	b = bytes.TrimPrefix(b, []byte{0xEF, 0xBB, 0xBF})
	records, err := csv.NewReader(bytes.NewReader(b)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestRun(t *testing.T) {
	testLogger(t)
	dir, out := t.TempDir(), t.TempDir()
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	writeHistory(t, dir, t0, []analytics.Row{
		{Rank: 1, CategoryName: "Just Chatting", Streamers: 10, Viewers: 1000},
		{Rank: 2, CategoryName: "Minecraft", Streamers: 5, Viewers: 200},
	})
	writeHistory(t, dir, t0.Add(time.Hour), []analytics.Row{
		{Rank: 1, CategoryName: "Minecraft", Streamers: 5, Viewers: 600},
		{Rank: 2, CategoryName: "Just Chatting", Streamers: 20, Viewers: 500},
	})

	var stdout bytes.Buffer
	err := Run(Options{Dir: dir, Out: out, Lang: "en", TopN: 50, TrendN: 10}, &stdout)
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "loaded 2 snapshots, 4 observations, 2 categories")
	assert.Contains(t, stdout.String(), "Minecraft")
	assert.FileExists(t, filepath.Join(out, WorkbookFile))

	summary := readCSV(t, filepath.Join(out, SummaryFile))
	require.Len(t, summary, 3)
	assert.Equal(t, "name", summary[0][0])

	trend := readCSV(t, filepath.Join(out, TrendFile))
	require.Len(t, trend, 3)
	assert.Equal(t, "snapshot_time", trend[0][0])
	assert.Equal(t, "2025-01-01_00-00", trend[1][0])

	struggling := readCSV(t, filepath.Join(out, StrugglingFile))
	require.Len(t, struggling, 2)
	assert.Equal(t, "Just Chatting", struggling[1][0])
}

func TestRunWithoutStruggling(t *testing.T) {
	testLogger(t)
	dir, out := t.TempDir(), t.TempDir()
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	writeHistory(t, dir, t0, []analytics.Row{{Rank: 1, CategoryName: "Chess", Streamers: 3, Viewers: 100}})
	writeHistory(t, dir, t0.Add(time.Hour), []analytics.Row{{Rank: 1, CategoryName: "Chess", Streamers: 3, Viewers: 150}})

	var stdout bytes.Buffer
	require.NoError(t, Run(Options{Dir: dir, Out: out, Lang: "en", TopN: 50, TrendN: 10}, &stdout))

	assert.Contains(t, stdout.String(), "no struggling categories detected")
	assert.NoFileExists(t, filepath.Join(out, StrugglingFile))
}

func TestRunEmptyDir(t *testing.T) {
	var stdout bytes.Buffer
	err := Run(Options{Dir: t.TempDir(), Out: t.TempDir()}, &stdout)
	assert.ErrorIs(t, err, rankcsv.ErrNoHistory)
}
