package dataobjects

import (
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/gbl08ma/sqalx"
)

// Train is a dimension row describing a train service. The business key is
// the (number, operator) pair; type and shortname are descriptive only and
// are not updated after first insert.
type Train struct {
	ID        int64
	Number    string
	Operator  string
	Type      sql.NullString
	ShortName sql.NullString
}

// GetTrains returns a slice with all registered trains
func GetTrains(node sqalx.Node) ([]*Train, error) {
	return getTrainsWithSelect(node, sdb.Select())
}

func getTrainsWithSelect(node sqalx.Node, sbuilder sq.SelectBuilder) ([]*Train, error) {
	trains := []*Train{}

	tx, err := node.Beginx()
	if err != nil {
		return trains, err
	}
	defer tx.Commit() // read-only tx

	rows, err := sbuilder.Columns("train_id", "number", "operator", "type", "shortname").
		From("train").
		RunWith(tx).Query()
	if err != nil {
		return trains, fmt.Errorf("getTrainsWithSelect: %s", err)
	}
	defer rows.Close()

	for rows.Next() {
		var train Train
		err := rows.Scan(
			&train.ID,
			&train.Number,
			&train.Operator,
			&train.Type,
			&train.ShortName)
		if err != nil {
			return trains, fmt.Errorf("getTrainsWithSelect: %s", err)
		}
		trains = append(trains, &train)
	}
	if err := rows.Err(); err != nil {
		return trains, fmt.Errorf("getTrainsWithSelect: %s", err)
	}
	return trains, nil
}

// GetTrain returns the Train with the given surrogate key
func GetTrain(node sqalx.Node, id int64) (*Train, error) {
	s := sdb.Select().
		Where(sq.Eq{"train_id": id})
	return getSingleTrain(node, s)
}

// GetTrainByNumber returns the Train with the given number and operator
func GetTrainByNumber(node sqalx.Node, number, operator string) (*Train, error) {
	s := sdb.Select().
		Where(sq.Eq{"number": number, "operator": operator})
	return getSingleTrain(node, s)
}

func getSingleTrain(node sqalx.Node, sbuilder sq.SelectBuilder) (*Train, error) {
	trains, err := getTrainsWithSelect(node, sbuilder)
	if err != nil {
		return nil, err
	}
	if len(trains) == 0 {
		return nil, ErrNotFound
	}
	return trains[0], nil
}

// Resolve maps the train's (number, operator) business key onto its
// surrogate key, inserting the dimension row exactly once if it does not
// exist yet. Same protocol as Station.Resolve: lookup and conflict-guarded
// insert in one transaction, re-read when a concurrent resolver wins.
func (train *Train) Resolve(node sqalx.Node) (int64, error) {
	tx, err := node.Beginx()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	existing, err := GetTrainByNumber(tx, train.Number, train.Operator)
	if err == nil {
		train.ID = existing.ID
		return train.ID, tx.Commit()
	}
	if !errors.Is(err, ErrNotFound) {
		return 0, fmt.Errorf("ResolveTrain: %s", err)
	}

	err = sdb.Insert("train").
		Columns("number", "operator", "type", "shortname").
		Values(train.Number, train.Operator, train.Type, train.ShortName).
		Suffix("ON CONFLICT (number, operator) DO NOTHING RETURNING train_id").
		RunWith(tx).QueryRow().Scan(&train.ID)
	if errors.Is(err, sql.ErrNoRows) {
		existing, err := GetTrainByNumber(tx, train.Number, train.Operator)
		if err != nil {
			return 0, fmt.Errorf("ResolveTrain: %s", err)
		}
		train.ID = existing.ID
		return train.ID, tx.Commit()
	}
	if err != nil {
		return 0, fmt.Errorf("ResolveTrain: %s", err)
	}
	return train.ID, tx.Commit()
}
