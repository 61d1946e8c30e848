package dataobjects

import (
	"database/sql"
	"fmt"

	"github.com/gbl08ma/sqalx"
)

// CompositionUnit is a fact row describing one physical railcar observed in
// a train composition. The train reference is a resolved surrogate key;
// the segment endpoints are kept as raw upstream station codes.
type CompositionUnit struct {
	ID                     int64
	TrainID                int64
	SegmentOriginCode      sql.NullString
	SegmentDestinationCode sql.NullString

	UnitID      sql.NullString
	ParentType  sql.NullString
	SubType     sql.NullString
	Orientation sql.NullString

	HasToilets                    bool
	HasTables                     bool
	HasSecondClassOutlets         bool
	HasFirstClassOutlets          bool
	HasHeating                    bool
	HasAirco                      bool
	CanPassToNextUnit             bool
	HasSemiAutomaticInteriorDoors bool
	HasLuggageSection             bool
	HasPrmSection                 bool
	HasPriorityPlaces             bool
	HasBikeSection                bool

	MaterialNumber      sql.NullString
	TractionType        sql.NullString
	MaterialSubTypeName sql.NullString

	StandingPlacesSecondClass int
	StandingPlacesFirstClass  int
	SeatsCoupeSecondClass     int
	SeatsCoupeFirstClass      int
	SeatsSecondClass          int
	SeatsFirstClass           int
	LengthInMeter             int
	TractionPosition          int
}

// Insert appends the composition unit fact
func (unit *CompositionUnit) Insert(node sqalx.Node) error {
	tx, err := node.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = sdb.Insert("train_composition_unit").
		Columns("train_id", "segment_origin_code", "segment_destination_code",
			"unit_id", "parent_type", "sub_type", "orientation",
			"has_toilets", "has_tables", "has_second_class_outlets",
			"has_first_class_outlets", "has_heating", "has_airco",
			"material_number", "traction_type", "can_pass_to_next_unit",
			"standing_places_second_class", "standing_places_first_class",
			"seats_coupe_second_class", "seats_coupe_first_class",
			"seats_second_class", "seats_first_class", "length_in_meter",
			"has_semi_automatic_interior_doors", "has_luggage_section",
			"material_sub_type_name", "traction_position",
			"has_prm_section", "has_priority_places", "has_bike_section").
		Values(unit.TrainID, unit.SegmentOriginCode, unit.SegmentDestinationCode,
			unit.UnitID, unit.ParentType, unit.SubType, unit.Orientation,
			unit.HasToilets, unit.HasTables, unit.HasSecondClassOutlets,
			unit.HasFirstClassOutlets, unit.HasHeating, unit.HasAirco,
			unit.MaterialNumber, unit.TractionType, unit.CanPassToNextUnit,
			unit.StandingPlacesSecondClass, unit.StandingPlacesFirstClass,
			unit.SeatsCoupeSecondClass, unit.SeatsCoupeFirstClass,
			unit.SeatsSecondClass, unit.SeatsFirstClass, unit.LengthInMeter,
			unit.HasSemiAutomaticInteriorDoors, unit.HasLuggageSection,
			unit.MaterialSubTypeName, unit.TractionPosition,
			unit.HasPrmSection, unit.HasPriorityPlaces, unit.HasBikeSection).
		RunWith(tx).Exec()
	if err != nil {
		return fmt.Errorf("InsertCompositionUnit: %s", err)
	}
	return tx.Commit()
}
