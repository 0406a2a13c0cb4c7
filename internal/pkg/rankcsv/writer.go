package rankcsv

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"catrank.dev/backend/internal/core/analytics"
	"catrank.dev/backend/internal/util"
)

var header = []string{ColumnRank, ColumnName, ColumnStreamers, ColumnViewers, ColumnAvg}

// Write encodes rows as a history file, prefixed with a UTF-8 BOM so
// spreadsheet tools detect the encoding.
func Write(w io.Writer, rows []analytics.Row) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return errors.Wrap(err, "failed to write BOM")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "failed to write header")
	}
	for _, r := range rows {
		avg := 0.0
		if r.Streamers > 0 {
			avg = util.RoundFloat64(float64(r.Viewers)/float64(r.Streamers), 2)
		}
		if err := cw.Write([]string{
			strconv.Itoa(r.Rank),
			r.CategoryName,
			strconv.Itoa(r.Streamers),
			strconv.Itoa(r.Viewers),
			strconv.FormatFloat(avg, 'f', -1, 64),
		}); err != nil {
			return errors.Wrap(err, "failed to write row")
		}
	}
	cw.Flush()
	return cw.Error()
}
