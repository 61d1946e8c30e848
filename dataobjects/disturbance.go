package dataobjects

import (
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/gbl08ma/sqalx"
	"github.com/lib/pq"
)

// Disturbance is a fact row for a service disturbance. Unlike the other
// facts it carries a business key: the upstream feed repeats unresolved
// disturbances on every poll, so each one is stored at most once.
type Disturbance struct {
	ID          int64
	Code        string
	Title       sql.NullString
	Description sql.NullString
	Type        sql.NullString
	ReportedAt  pq.NullTime
	Link        sql.NullString
	Attachment  sql.NullString
}

// GetDisturbances returns a slice with all recorded disturbances
func GetDisturbances(node sqalx.Node) ([]*Disturbance, error) {
	return getDisturbancesWithSelect(node, sdb.Select())
}

func getDisturbancesWithSelect(node sqalx.Node, sbuilder sq.SelectBuilder) ([]*Disturbance, error) {
	disturbances := []*Disturbance{}

	tx, err := node.Beginx()
	if err != nil {
		return disturbances, err
	}
	defer tx.Commit() // read-only tx

	rows, err := sbuilder.Columns("disturbance_id", "code", "title", "description",
		"type", "reported_at", "link", "attachment").
		From("disturbance").
		RunWith(tx).Query()
	if err != nil {
		return disturbances, fmt.Errorf("getDisturbancesWithSelect: %s", err)
	}
	defer rows.Close()

	for rows.Next() {
		var disturbance Disturbance
		err := rows.Scan(
			&disturbance.ID,
			&disturbance.Code,
			&disturbance.Title,
			&disturbance.Description,
			&disturbance.Type,
			&disturbance.ReportedAt,
			&disturbance.Link,
			&disturbance.Attachment)
		if err != nil {
			return disturbances, fmt.Errorf("getDisturbancesWithSelect: %s", err)
		}
		disturbances = append(disturbances, &disturbance)
	}
	if err := rows.Err(); err != nil {
		return disturbances, fmt.Errorf("getDisturbancesWithSelect: %s", err)
	}
	return disturbances, nil
}

// GetDisturbanceByCode returns the Disturbance with the given business key
func GetDisturbanceByCode(node sqalx.Node, code string) (*Disturbance, error) {
	s := sdb.Select().
		Where(sq.Eq{"code": code})
	disturbances, err := getDisturbancesWithSelect(node, s)
	if err != nil {
		return nil, err
	}
	if len(disturbances) == 0 {
		return nil, ErrNotFound
	}
	return disturbances[0], nil
}

// Insert records the disturbance if its business key has not been seen
// before. An already-present key is a benign no-op, whether detected by the
// existence check or by the unique constraint when a concurrent run inserts
// the same key first.
func (disturbance *Disturbance) Insert(node sqalx.Node) error {
	tx, err := node.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = GetDisturbanceByCode(tx, disturbance.Code)
	if err == nil {
		return tx.Commit()
	}
	if !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("InsertDisturbance: %s", err)
	}

	_, err = sdb.Insert("disturbance").
		Columns("code", "title", "description", "type", "reported_at", "link", "attachment").
		Values(disturbance.Code, disturbance.Title, disturbance.Description,
			disturbance.Type, disturbance.ReportedAt, disturbance.Link,
			disturbance.Attachment).
		Suffix("ON CONFLICT (code) DO NOTHING").
		RunWith(tx).Exec()
	if err != nil {
		return fmt.Errorf("InsertDisturbance: %s", err)
	}
	return tx.Commit()
}
