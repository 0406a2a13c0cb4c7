package rankcsv

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"catrank.dev/backend/internal/constant"
	"catrank.dev/backend/internal/core/analytics"
)

const (
	FilePrefix = "twitch_ranking_"
	FileExt    = ".csv"

	ColumnRank      = "rank"
	ColumnName      = "name"
	ColumnStreamers = "streamers"
	ColumnViewers   = "viewers"
	ColumnAvg       = "avg_viewers_per_stream"
)

var (
	RequiredColumns = []string{ColumnRank, ColumnName, ColumnStreamers, ColumnViewers}

	ErrMissingColumns = errors.New("rankcsv: missing required columns")
	ErrInvalidRow     = errors.New("rankcsv: invalid row")
	ErrBadFileName    = errors.New("rankcsv: file name does not carry a snapshot time")
	ErrNoHistory      = errors.New("rankcsv: no history files found")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// MissingColumnsError names the required columns a header lacks.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return ErrMissingColumns.Error() + ": " + strings.Join(e.Columns, ", ")
}

func (e *MissingColumnsError) Unwrap() error {
	return ErrMissingColumns
}

// FileName returns the history file name for a snapshot taken at t.
func FileName(t time.Time) string {
	return FilePrefix + t.Format(constant.SnapshotTimeLayout) + FileExt
}

// ParseFileTime extracts the snapshot time from a history file name. The
// time carries no zone and is read as UTC.
func ParseFileTime(path string) (time.Time, error) {
	base := filepath.Base(path)
	if !strings.HasPrefix(base, FilePrefix) || !strings.HasSuffix(base, FileExt) {
		return time.Time{}, errors.Wrap(ErrBadFileName, base)
	}
	tag := strings.TrimSuffix(strings.TrimPrefix(base, FilePrefix), FileExt)
	t, err := time.ParseInLocation(constant.SnapshotTimeLayout, tag, time.UTC)
	if err != nil {
		return time.Time{}, errors.Wrap(ErrBadFileName, base)
	}
	return t, nil
}

// Read parses one snapshot file. Columns may appear in any order and extra
// columns are ignored.
func Read(r io.Reader) ([]analytics.Row, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read csv")
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &MissingColumnsError{Columns: RequiredColumns}
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read csv header")
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	var missing []string
	for _, c := range RequiredColumns {
		if _, ok := index[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	rows := []analytics.Row{}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read csv line %d", line)
		}
		row, err := parseRecord(record, index)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRecord(record []string, index map[string]int) (analytics.Row, error) {
	field := func(col string) string {
		i := index[col]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var row analytics.Row
	row.CategoryName = field(ColumnName)
	if row.CategoryName == "" {
		return row, errors.Wrap(ErrInvalidRow, "empty name")
	}

	for _, f := range []struct {
		col string
		dst *int
		min int
	}{
		{ColumnRank, &row.Rank, 1},
		{ColumnStreamers, &row.Streamers, 0},
		{ColumnViewers, &row.Viewers, 0},
	} {
		v, err := strconv.Atoi(field(f.col))
		if err != nil {
			return row, errors.Wrapf(ErrInvalidRow, "%s: %q is not an integer", f.col, field(f.col))
		}
		if v < f.min {
			return row, errors.Wrapf(ErrInvalidRow, "%s: %d is below %d", f.col, v, f.min)
		}
		*f.dst = v
	}
	return row, nil
}

// Snapshot is one history file's content.
type Snapshot struct {
	Time time.Time
	Path string
	Rows []analytics.Row
}

// ReadFile reads a history file, taking its snapshot time from the name.
func ReadFile(path string) (*Snapshot, error) {
	t, err := ParseFileTime(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open history file")
	}
	defer f.Close()

	rows, err := Read(f)
	if err != nil {
		return nil, errors.Wrap(err, filepath.Base(path))
	}
	return &Snapshot{Time: t, Path: path, Rows: rows}, nil
}

// ReadDir reads every history file in dir ordered by snapshot time. Files
// that do not follow the naming pattern are skipped.
func ReadDir(dir string) ([]*Snapshot, error) {
	paths, err := filepath.Glob(filepath.Join(dir, FilePrefix+"*"+FileExt))
	if err != nil {
		return nil, errors.Wrap(err, "failed to glob history files")
	}

	snapshots := make([]*Snapshot, 0, len(paths))
	for _, p := range paths {
		if _, err := ParseFileTime(p); err != nil {
			log.Debug().Str("evt.name", "rankcsv.skip").Str("path", p).Msg("skipping file with unexpected name")
			continue
		}
		s, err := ReadFile(p)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}
	if len(snapshots) == 0 {
		return nil, errors.Wrap(ErrNoHistory, dir)
	}

	sort.SliceStable(snapshots, func(i, j int) bool {
		return snapshots[i].Time.Before(snapshots[j].Time)
	})
	return snapshots, nil
}

// Observations derives the observation set of the given snapshots.
func Observations(snapshots []*Snapshot, guard analytics.ZeroGuard) []analytics.Observation {
	var n int
	for _, s := range snapshots {
		n += len(s.Rows)
	}
	obs := make([]analytics.Observation, 0, n)
	for _, s := range snapshots {
		obs = append(obs, analytics.DeriveAll(s.Rows, s.Time, guard)...)
	}
	return obs
}

func (s *Snapshot) String() string {
	return fmt.Sprintf("%s (%d rows)", s.Time.Format(constant.SnapshotTimeLayout), len(s.Rows))
}
