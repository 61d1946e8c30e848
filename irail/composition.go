package irail

import "strconv"

// UnitRecord is one physical railcar flattened out of a composition
// response, tagged with the codes of its enclosing segment's endpoints
type UnitRecord struct {
	VehicleID              string
	SegmentOriginCode      string
	SegmentDestinationCode string
	SegmentOriginName      string
	SegmentDestinationName string

	UnitID      string
	ParentType  string
	SubType     string
	Orientation string

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

	MaterialNumber      string
	TractionType        string
	MaterialSubTypeName string

	StandingPlacesSecondClass int
	StandingPlacesFirstClass  int
	SeatsCoupeSecondClass     int
	SeatsCoupeFirstClass      int
	SeatsSecondClass          int
	SeatsFirstClass           int
	LengthInMeter             int
	TractionPosition          int
}

// ExtractUnits flattens the nested segment/unit structure of a composition
// response into one record per railcar
func ExtractUnits(resp *CompositionResponse) []UnitRecord {
	records := []UnitRecord{}
	for _, seg := range resp.Composition.Segments.Segment {
		for _, u := range seg.Composition.Units.Unit {
			records = append(records, UnitRecord{
				VehicleID:              resp.Vehicle,
				SegmentOriginCode:      seg.Origin.ID,
				SegmentDestinationCode: seg.Destination.ID,
				SegmentOriginName:      seg.Origin.Name,
				SegmentDestinationName: seg.Destination.Name,

				UnitID:      u.ID,
				ParentType:  u.MaterialType.ParentType,
				SubType:     u.MaterialType.SubType,
				Orientation: u.MaterialType.Orientation,

				HasToilets:                    flag(u.HasToilets),
				HasTables:                     flag(u.HasTables),
				HasSecondClassOutlets:         flag(u.HasSecondClassOutlets),
				HasFirstClassOutlets:          flag(u.HasFirstClassOutlets),
				HasHeating:                    flag(u.HasHeating),
				HasAirco:                      flag(u.HasAirco),
				CanPassToNextUnit:             flag(u.CanPassToNextUnit),
				HasSemiAutomaticInteriorDoors: flag(u.HasSemiAutomaticInteriorDoors),
				HasLuggageSection:             flag(u.HasLuggageSection),
				HasPrmSection:                 flag(u.HasPrmSection),
				HasPriorityPlaces:             flag(u.HasPriorityPlaces),
				HasBikeSection:                flag(u.HasBikeSection),

				MaterialNumber:      u.MaterialNumber,
				TractionType:        u.TractionType,
				MaterialSubTypeName: u.MaterialSubTypeName,

				StandingPlacesSecondClass: count(u.StandingPlacesSecondClass),
				StandingPlacesFirstClass:  count(u.StandingPlacesFirstClass),
				SeatsCoupeSecondClass:     count(u.SeatsCoupeSecondClass),
				SeatsCoupeFirstClass:      count(u.SeatsCoupeFirstClass),
				SeatsSecondClass:          count(u.SeatsSecondClass),
				SeatsFirstClass:           count(u.SeatsFirstClass),
				LengthInMeter:             count(u.LengthInMeter),
				TractionPosition:          count(u.TractionPosition),
			})
		}
	}
	return records
}

func flag(s string) bool {
	return s == "1"
}

func count(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
