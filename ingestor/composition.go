package ingestor

import (
	"context"
	"database/sql"
	"strings"

	cache "github.com/patrickmn/go-cache"

	"github.com/hajersmiai/trainwarehouse/dataobjects"
	"github.com/hajersmiai/trainwarehouse/irail"
)

// ingestCompositions writes one composition-unit fact per railcar for every
// vehicle discovered during the liveboard pass
func (in *Ingestor) ingestCompositions(ctx context.Context, vehicles []string, summary *Summary) {
	for _, vehicle := range vehicles {
		select {
		case <-ctx.Done():
			return
		default:
		}
		units, failed := in.ingestComposition(ctx, vehicle)
		summary.CompositionUnitsWritten += units
		summary.ItemsFailed += failed
	}
}

func (in *Ingestor) ingestComposition(ctx context.Context, vehicle string) (units, failed int) {
	comp, err := in.client.Composition(ctx, vehicle)
	if err != nil {
		in.log.Println("ingestComposition:", vehicle, err)
		return 0, 1
	}
	records := irail.ExtractUnits(comp)
	if len(records) == 0 {
		return 0, 0
	}

	train := in.trainForVehicle(ctx, vehicle)
	trainID, err := train.Resolve(in.node)
	if err != nil {
		in.log.Println("ingestComposition:", vehicle, err)
		return 0, 1
	}

	for i := range records {
		unit := unitFromRecord(trainID, &records[i])
		if err := unit.Insert(in.node); err != nil {
			in.log.Println("ingestComposition:", vehicle, "unit", records[i].UnitID, err)
			failed++
			continue
		}
		units++
	}
	return units, failed
}

// trainForVehicle builds the train dimension row for a vehicle identifier.
// The number/operator/type come from the identifier itself; the shortname
// comes from the vehicle detail endpoint, fetched at most once per run and
// cached. When the identifier cannot be parsed a best-effort synthetic
// record derived from the raw identifier is used instead of aborting.
func (in *Ingestor) trainForVehicle(ctx context.Context, vehicle string) *dataobjects.Train {
	vid, err := irail.ParseVehicleID(vehicle)
	if err != nil {
		in.log.Println("trainForVehicle:", err)
		code := vehicle
		if idx := strings.LastIndex(vehicle, "."); idx >= 0 {
			code = vehicle[idx+1:]
		}
		operator := ""
		if parts := strings.Split(vehicle, "."); len(parts) > 1 {
			operator = parts[1]
		}
		return &dataobjects.Train{
			Number:    code,
			Operator:  operator,
			ShortName: sql.NullString{String: code, Valid: true},
		}
	}

	shortname := vid.Code
	if cached, ok := in.vehicleDetails.Get(vehicle); ok {
		shortname = cached.(string)
	} else {
		detail, err := in.client.Vehicle(ctx, vehicle)
		if err != nil {
			in.log.Println("trainForVehicle:", vehicle, err)
		} else if detail.VehicleInfo.ShortName != "" {
			shortname = detail.VehicleInfo.ShortName
		}
		// cache failures too: retrying on the next mention within the same
		// run would just hammer the API for the same answer
		in.vehicleDetails.Set(vehicle, shortname, cache.DefaultExpiration)
	}

	return &dataobjects.Train{
		Number:    vid.Number,
		Operator:  vid.Operator,
		Type:      sql.NullString{String: vid.Type, Valid: vid.Type != ""},
		ShortName: sql.NullString{String: shortname, Valid: true},
	}
}

func unitFromRecord(trainID int64, record *irail.UnitRecord) *dataobjects.CompositionUnit {
	return &dataobjects.CompositionUnit{
		TrainID:                trainID,
		SegmentOriginCode:      nullable(record.SegmentOriginCode),
		SegmentDestinationCode: nullable(record.SegmentDestinationCode),

		UnitID:      nullable(record.UnitID),
		ParentType:  nullable(record.ParentType),
		SubType:     nullable(record.SubType),
		Orientation: nullable(record.Orientation),

		HasToilets:                    record.HasToilets,
		HasTables:                     record.HasTables,
		HasSecondClassOutlets:         record.HasSecondClassOutlets,
		HasFirstClassOutlets:          record.HasFirstClassOutlets,
		HasHeating:                    record.HasHeating,
		HasAirco:                      record.HasAirco,
		CanPassToNextUnit:             record.CanPassToNextUnit,
		HasSemiAutomaticInteriorDoors: record.HasSemiAutomaticInteriorDoors,
		HasLuggageSection:             record.HasLuggageSection,
		HasPrmSection:                 record.HasPrmSection,
		HasPriorityPlaces:             record.HasPriorityPlaces,
		HasBikeSection:                record.HasBikeSection,

		MaterialNumber:      nullable(record.MaterialNumber),
		TractionType:        nullable(record.TractionType),
		MaterialSubTypeName: nullable(record.MaterialSubTypeName),

		StandingPlacesSecondClass: record.StandingPlacesSecondClass,
		StandingPlacesFirstClass:  record.StandingPlacesFirstClass,
		SeatsCoupeSecondClass:     record.SeatsCoupeSecondClass,
		SeatsCoupeFirstClass:      record.SeatsCoupeFirstClass,
		SeatsSecondClass:          record.SeatsSecondClass,
		SeatsFirstClass:           record.SeatsFirstClass,
		LengthInMeter:             record.LengthInMeter,
		TractionPosition:          record.TractionPosition,
	}
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
