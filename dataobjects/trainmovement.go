package dataobjects

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/gbl08ma/sqalx"
	"github.com/lib/pq"
)

// TrainMovement is a fact row recording one observed departure. Movements
// are a time-series of observations: repeated ingestion of the same
// liveboard entry produces distinct rows, never an update.
type TrainMovement struct {
	ID                 int64
	TrainID            int64
	DepartureStationID int64
	ArrivalStationID   int64
	DepartureDateID    int64
	ArrivalDateID      sql.NullInt64
	ScheduledDeparture pq.NullTime
	ActualDeparture    pq.NullTime
	ScheduledArrival   pq.NullTime
	ActualArrival      pq.NullTime
	DelayMinutes       int
	Platform           sql.NullString
	Canceled           bool
}

// GetTrainMovements returns a slice with all recorded movements
func GetTrainMovements(node sqalx.Node) ([]*TrainMovement, error) {
	return getTrainMovementsWithSelect(node, sdb.Select())
}

func getTrainMovementsWithSelect(node sqalx.Node, sbuilder sq.SelectBuilder) ([]*TrainMovement, error) {
	movements := []*TrainMovement{}

	tx, err := node.Beginx()
	if err != nil {
		return movements, err
	}
	defer tx.Commit() // read-only tx

	rows, err := sbuilder.Columns("movement_id", "train_id", "departure_station_id",
		"arrival_station_id", "departure_date_id", "arrival_date_id",
		"scheduled_departure", "actual_departure", "scheduled_arrival",
		"actual_arrival", "delay_minutes", "platform", "canceled").
		From("train_movement").
		RunWith(tx).Query()
	if err != nil {
		return movements, fmt.Errorf("getTrainMovementsWithSelect: %s", err)
	}
	defer rows.Close()

	for rows.Next() {
		var movement TrainMovement
		err := rows.Scan(
			&movement.ID,
			&movement.TrainID,
			&movement.DepartureStationID,
			&movement.ArrivalStationID,
			&movement.DepartureDateID,
			&movement.ArrivalDateID,
			&movement.ScheduledDeparture,
			&movement.ActualDeparture,
			&movement.ScheduledArrival,
			&movement.ActualArrival,
			&movement.DelayMinutes,
			&movement.Platform,
			&movement.Canceled)
		if err != nil {
			return movements, fmt.Errorf("getTrainMovementsWithSelect: %s", err)
		}
		movements = append(movements, &movement)
	}
	if err := rows.Err(); err != nil {
		return movements, fmt.Errorf("getTrainMovementsWithSelect: %s", err)
	}
	return movements, nil
}

// Insert appends the movement fact. All referenced surrogate keys must
// already be resolved; this is enforced by call order, not by this method.
func (movement *TrainMovement) Insert(node sqalx.Node) error {
	tx, err := node.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = sdb.Insert("train_movement").
		Columns("train_id", "departure_station_id", "arrival_station_id",
			"departure_date_id", "arrival_date_id",
			"scheduled_departure", "actual_departure",
			"scheduled_arrival", "actual_arrival",
			"delay_minutes", "platform", "canceled").
		Values(movement.TrainID, movement.DepartureStationID, movement.ArrivalStationID,
			movement.DepartureDateID, movement.ArrivalDateID,
			movement.ScheduledDeparture, movement.ActualDeparture,
			movement.ScheduledArrival, movement.ActualArrival,
			movement.DelayMinutes, movement.Platform, movement.Canceled).
		RunWith(tx).Exec()
	if err != nil {
		return fmt.Errorf("InsertTrainMovement: %s", err)
	}
	return tx.Commit()
}
