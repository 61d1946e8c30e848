package dataobjects

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/gbl08ma/sqalx"
	"github.com/rickb777/date"
)

// TrainFeedback is a fact row for a crowding report: which occupancy level
// was reported for a vehicle on a connection at a station on a given day
type TrainFeedback struct {
	ID            int64
	ConnectionURI string
	StationURI    string
	Date          date.Date
	VehicleURI    string
	Occupancy     string
}

// Insert appends the feedback fact. When dedupe is set, a report with the
// same natural key as an existing row is a no-op; by default reports are
// append-only.
func (feedback *TrainFeedback) Insert(node sqalx.Node, dedupe bool) error {
	tx, err := node.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if dedupe {
		var count int
		err = sdb.Select("COUNT(*)").
			From("train_feedback").
			Where(sq.Eq{
				"connection_uri": feedback.ConnectionURI,
				"station_uri":    feedback.StationURI,
				"feedback_date":  feedback.Date.UTC(),
				"vehicle_uri":    feedback.VehicleURI,
				"occupancy":      feedback.Occupancy,
			}).
			RunWith(tx).QueryRow().Scan(&count)
		if err != nil {
			return fmt.Errorf("InsertTrainFeedback: %s", err)
		}
		if count > 0 {
			return tx.Commit()
		}
	}

	_, err = sdb.Insert("train_feedback").
		Columns("connection_uri", "station_uri", "feedback_date", "vehicle_uri", "occupancy").
		Values(feedback.ConnectionURI, feedback.StationURI, feedback.Date.UTC(),
			feedback.VehicleURI, feedback.Occupancy).
		RunWith(tx).Exec()
	if err != nil {
		return fmt.Errorf("InsertTrainFeedback: %s", err)
	}
	return tx.Commit()
}
