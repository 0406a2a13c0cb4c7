package rankcsv

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catrank.dev/backend/internal/core/analytics"
)

func TestParseFileTime(t *testing.T) {
	got, err := ParseFileTime("data/twitch_ranking_2024-03-09_18-30.csv")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 9, 18, 30, 0, 0, time.UTC), got)

	for _, name := range []string{
		"twitch_category_ranking_latest.csv",
		"twitch_ranking_2024-03-09.csv",
		"twitch_ranking_2024-03-09_18-30.png",
	} {
		_, err := ParseFileTime(name)
		assert.ErrorIs(t, err, ErrBadFileName, name)
	}

	assert.Equal(t, "twitch_ranking_2024-03-09_18-30.csv", FileName(got))
}

func TestReadWithBOMAndExtraColumn(t *testing.T) {
	in := "\xEF\xBB\xBFrank,name,streamers,viewers,avg_viewers_per_stream\n" +
		"1,Just Chatting,3000,300000,100.0\n" +
		"2,\"Hello, World\",0,10,0\n"

	rows, err := Read(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []analytics.Row{
		{Rank: 1, CategoryName: "Just Chatting", Streamers: 3000, Viewers: 300000},
		{Rank: 2, CategoryName: "Hello, World", Streamers: 0, Viewers: 10},
	}, rows)
}

func TestReadColumnOrderIndependent(t *testing.T) {
	rows, err := Read(strings.NewReader("viewers,name,rank,streamers\n50,Chess,7,5\n"))
	require.NoError(t, err)
	assert.Equal(t, []analytics.Row{{Rank: 7, CategoryName: "Chess", Streamers: 5, Viewers: 50}}, rows)
}

func TestReadMissingColumns(t *testing.T) {
	_, err := Read(strings.NewReader("rank,name,viewers\n1,Chess,50\n"))
	require.ErrorIs(t, err, ErrMissingColumns)

	var mce *MissingColumnsError
	require.ErrorAs(t, err, &mce)
	assert.Equal(t, []string{"streamers"}, mce.Columns)

	_, err = Read(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrMissingColumns)
}

func TestReadInvalidRows(t *testing.T) {
	for _, body := range []string{
		"1,Chess,-1,50\n",
		"0,Chess,1,50\n",
		"1,Chess,x,50\n",
		"1,,1,50\n",
	} {
		_, err := Read(strings.NewReader("rank,name,streamers,viewers\n" + body))
		assert.ErrorIs(t, err, ErrInvalidRow, body)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	rows := []analytics.Row{
		{Rank: 1, CategoryName: "Just Chatting", Streamers: 3, Viewers: 10},
		{Rank: 2, CategoryName: "Chess", Streamers: 0, Viewers: 7},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, rows))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), utf8BOM))
	assert.Contains(t, buf.String(), "1,Just Chatting,3,10,3.33\n")
	assert.Contains(t, buf.String(), "2,Chess,0,7,0\n")

	back, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, rows, back)
}

func TestReadDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write("twitch_ranking_2024-03-09_19-00.csv", "rank,name,streamers,viewers\n1,Chess,10,200\n")
	write("twitch_ranking_2024-03-09_18-00.csv", "rank,name,streamers,viewers\n1,Chess,10,100\n2,Go,0,5\n")
	write("twitch_ranking_latest.csv", "rank,name,streamers,viewers\n1,Chess,10,999\n")

	snapshots, err := ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	assert.Equal(t, 18, snapshots[0].Time.Hour())
	assert.Equal(t, 19, snapshots[1].Time.Hour())

	obs := Observations(snapshots, analytics.ZeroGuardZero)
	require.Len(t, obs, 3)
	assert.Equal(t, 10.0, obs[0].CompetitionIndex)
	assert.Equal(t, 0.0, obs[1].CompetitionIndex)
	assert.Equal(t, 20.0, obs[2].CompetitionIndex)

	_, err = ReadDir(t.TempDir())
	assert.ErrorIs(t, err, ErrNoHistory)
}
