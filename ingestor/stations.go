package ingestor

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hajersmiai/trainwarehouse/dataobjects"
	"github.com/hajersmiai/trainwarehouse/irail"
)

// ingestStationDirectory loads the full upstream station directory into the
// station dimension and returns it so later passes can reuse it
func (in *Ingestor) ingestStationDirectory(ctx context.Context, summary *Summary) ([]irail.StationInfo, error) {
	directory, err := in.client.Stations(ctx)
	if err != nil {
		return nil, fmt.Errorf("ingestStationDirectory: %s", err)
	}

	for i := range directory {
		station := stationFromInfo(&directory[i])
		if _, err := station.Resolve(in.node); err != nil {
			in.log.Println("ingestStationDirectory:", directory[i].ID, err)
			summary.ItemsFailed++
			continue
		}
		summary.StationsLoaded++
	}
	return directory, nil
}

// stationFromInfo maps an upstream station record onto the dimension row
// that will be inserted if the station is not known yet
func stationFromInfo(info *irail.StationInfo) *dataobjects.Station {
	station := &dataobjects.Station{
		Code: info.ID,
		Name: info.Name,
	}
	if info.StandardName != "" {
		station.StandardName = sql.NullString{String: info.StandardName, Valid: true}
	}
	if lat, ok := info.Latitude(); ok {
		station.Latitude = sql.NullFloat64{Float64: lat, Valid: true}
	}
	if lon, ok := info.Longitude(); ok {
		station.Longitude = sql.NullFloat64{Float64: lon, Valid: true}
	}
	if info.URI != "" {
		station.URI = sql.NullString{String: info.URI, Valid: true}
	}
	return station
}
