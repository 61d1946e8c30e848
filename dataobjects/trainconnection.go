package dataobjects

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/gbl08ma/sqalx"
)

// TrainConnection is a fact row for one point-to-point route result.
// Station references are kept as the names the route was queried with.
type TrainConnection struct {
	ID               int64
	DepartureStation string
	ArrivalStation   string
	DepartureTime    time.Time
	ArrivalTime      time.Time
	Duration         sql.NullString
	Vehicle          sql.NullString
	Vias             int
}

// Insert appends the connection fact
func (connection *TrainConnection) Insert(node sqalx.Node) error {
	tx, err := node.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = sdb.Insert("train_connection").
		Columns("departure_station", "arrival_station", "departure_time",
			"arrival_time", "duration", "vehicle", "vias").
		Values(connection.DepartureStation, connection.ArrivalStation,
			connection.DepartureTime, connection.ArrivalTime,
			connection.Duration, connection.Vehicle, connection.Vias).
		RunWith(tx).Exec()
	if err != nil {
		return fmt.Errorf("InsertTrainConnection: %s", err)
	}
	return tx.Commit()
}
