package dataobjects

import (
	"fmt"
	"time"

	"github.com/gbl08ma/sqalx"
)

// DateDimension is a dimension row for a single second of calendar time.
// Its key is not an auto-generated surrogate: it is derived from the
// timestamp itself, so the same instant always maps to the same key across
// independent ingestion runs without coordination.
type DateDimension struct {
	ID       int64
	FullDate time.Time
	Year     int
	Month    int
	Day      int
	Hour     int
	Minute   int
	Second   int
}

// DateKey derives the deterministic dimension key for a timestamp:
// YYYYMMDDHHMMSS as a decimal number
func DateKey(t time.Time) int64 {
	return int64(t.Year())*10000000000 +
		int64(t.Month())*100000000 +
		int64(t.Day())*1000000 +
		int64(t.Hour())*10000 +
		int64(t.Minute())*100 +
		int64(t.Second())
}

// NewDateDimension builds the dimension row for a timestamp
func NewDateDimension(t time.Time) *DateDimension {
	return &DateDimension{
		ID:       DateKey(t),
		FullDate: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()),
		Year:     t.Year(),
		Month:    int(t.Month()),
		Day:      t.Day(),
		Hour:     t.Hour(),
		Minute:   t.Minute(),
		Second:   t.Second(),
	}
}

// Ensure inserts the dimension row if it is not present yet and returns the
// key. The insert is guarded by ON CONFLICT so repeated calls for the same
// instant are idempotent.
func (d *DateDimension) Ensure(node sqalx.Node) (int64, error) {
	tx, err := node.Beginx()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	_, err = sdb.Insert("date_dimension").
		Columns("date_id", "full_date", "year", "month", "day", "hour", "minute", "second").
		Values(d.ID, d.FullDate, d.Year, d.Month, d.Day, d.Hour, d.Minute, d.Second).
		Suffix("ON CONFLICT (date_id) DO NOTHING").
		RunWith(tx).Exec()
	if err != nil {
		return 0, fmt.Errorf("EnsureDateDimension: %s", err)
	}
	return d.ID, tx.Commit()
}
