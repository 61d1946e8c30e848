package dataobjects

import (
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/gbl08ma/sqalx"
)

// Station is a dimension row describing a railway station. Code is the
// upstream business key; ID is the warehouse surrogate key, assigned on
// first insert. Attributes are fixed at insert time and never updated.
type Station struct {
	ID           int64
	Code         string
	Name         string
	StandardName sql.NullString
	Latitude     sql.NullFloat64
	Longitude    sql.NullFloat64
	URI          sql.NullString
}

// GetStations returns a slice with all registered stations
func GetStations(node sqalx.Node) ([]*Station, error) {
	return getStationsWithSelect(node, sdb.Select())
}

func getStationsWithSelect(node sqalx.Node, sbuilder sq.SelectBuilder) ([]*Station, error) {
	stations := []*Station{}

	tx, err := node.Beginx()
	if err != nil {
		return stations, err
	}
	defer tx.Commit() // read-only tx

	rows, err := sbuilder.Columns("station_id", "code", "name", "standard_name",
		"latitude", "longitude", "uri").
		From("station").
		RunWith(tx).Query()
	if err != nil {
		return stations, fmt.Errorf("getStationsWithSelect: %s", err)
	}
	defer rows.Close()

	for rows.Next() {
		var station Station
		var code sql.NullString
		err := rows.Scan(
			&station.ID,
			&code,
			&station.Name,
			&station.StandardName,
			&station.Latitude,
			&station.Longitude,
			&station.URI)
		if err != nil {
			return stations, fmt.Errorf("getStationsWithSelect: %s", err)
		}
		station.Code = code.String
		stations = append(stations, &station)
	}
	if err := rows.Err(); err != nil {
		return stations, fmt.Errorf("getStationsWithSelect: %s", err)
	}
	return stations, nil
}

// GetStation returns the Station with the given surrogate key
func GetStation(node sqalx.Node, id int64) (*Station, error) {
	s := sdb.Select().
		Where(sq.Eq{"station_id": id})
	return getSingleStation(node, s)
}

// GetStationByCode returns the Station with the given business code
func GetStationByCode(node sqalx.Node, code string) (*Station, error) {
	s := sdb.Select().
		Where(sq.Eq{"code": code})
	return getSingleStation(node, s)
}

// GetStationByName returns the Station with the given display name
func GetStationByName(node sqalx.Node, name string) (*Station, error) {
	s := sdb.Select().
		Where(sq.Eq{"name": name})
	return getSingleStation(node, s)
}

func getSingleStation(node sqalx.Node, sbuilder sq.SelectBuilder) (*Station, error) {
	stations, err := getStationsWithSelect(node, sbuilder)
	if err != nil {
		return nil, err
	}
	if len(stations) == 0 {
		return nil, ErrNotFound
	}
	return stations[0], nil
}

// Resolve maps the station's business key onto its surrogate key, inserting
// the dimension row exactly once if it does not exist yet. Lookup order:
// business code, then display name (records lacking a code may still match
// an already-known station by name). The check-then-insert sequence runs in
// one transaction and the insert carries ON CONFLICT DO NOTHING; when the
// insert returns no row, a concurrent resolver won the race and the key is
// re-read. Existing rows are never updated.
func (station *Station) Resolve(node sqalx.Node) (int64, error) {
	tx, err := node.Beginx()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if station.Code != "" {
		existing, err := GetStationByCode(tx, station.Code)
		if err == nil {
			station.ID = existing.ID
			return station.ID, tx.Commit()
		}
		if !errors.Is(err, ErrNotFound) {
			return 0, fmt.Errorf("ResolveStation: %s", err)
		}
	}

	if station.Name != "" {
		existing, err := GetStationByName(tx, station.Name)
		if err == nil {
			station.ID = existing.ID
			return station.ID, tx.Commit()
		}
		if !errors.Is(err, ErrNotFound) {
			return 0, fmt.Errorf("ResolveStation: %s", err)
		}
	}

	err = sdb.Insert("station").
		Columns("code", "name", "standard_name", "latitude", "longitude", "uri").
		Values(toNullString(station.Code), station.Name, station.StandardName,
			station.Latitude, station.Longitude, station.URI).
		Suffix("ON CONFLICT DO NOTHING RETURNING station_id").
		RunWith(tx).QueryRow().Scan(&station.ID)
	if errors.Is(err, sql.ErrNoRows) {
		existing, err := station.reread(tx)
		if err != nil {
			return 0, fmt.Errorf("ResolveStation: %s", err)
		}
		station.ID = existing.ID
		return station.ID, tx.Commit()
	}
	if err != nil {
		return 0, fmt.Errorf("ResolveStation: %s", err)
	}
	return station.ID, tx.Commit()
}

// reread fetches the row a concurrent resolver inserted for this key
func (station *Station) reread(node sqalx.Node) (*Station, error) {
	if station.Code != "" {
		return GetStationByCode(node, station.Code)
	}
	return GetStationByName(node, station.Name)
}
