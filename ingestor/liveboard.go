package ingestor

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/lib/pq"
	"github.com/rickb777/date"
	funk "github.com/thoas/go-funk"

	"github.com/hajersmiai/trainwarehouse/dataobjects"
	"github.com/hajersmiai/trainwarehouse/irail"
)

type liveboardResult struct {
	vehicles  []string
	processed int
	movements int
	feedback  int
	failed    int
}

// ingestLiveboards fetches the liveboard of every station in the set on a
// worker pool and writes one movement fact per departure. It returns the
// deduplicated set of vehicle identifiers observed across all boards, so
// the composition pass never has to fetch the liveboards a second time.
func (in *Ingestor) ingestLiveboards(ctx context.Context, stations []string, summary *Summary) []string {
	pool := pond.NewResultPool[liveboardResult](in.cfg.LiveboardWorkers)
	defer pool.StopAndWait()
	group := pool.NewGroupContext(ctx)

	for _, station := range stations {
		station := station
		group.SubmitErr(func() (liveboardResult, error) {
			// failures are isolated per station; the task itself never errors
			return in.ingestLiveboard(ctx, station), nil
		})
	}

	results, err := group.Wait()
	if err != nil {
		in.log.Println("ingestLiveboards:", err)
	}

	vehicles := []string{}
	for _, res := range results {
		vehicles = append(vehicles, res.vehicles...)
		summary.StationsProcessed += res.processed
		summary.MovementsWritten += res.movements
		summary.FeedbackWritten += res.feedback
		summary.ItemsFailed += res.failed
	}
	return funk.UniqString(vehicles)
}

func (in *Ingestor) ingestLiveboard(ctx context.Context, station string) liveboardResult {
	res := liveboardResult{}

	board, err := in.client.Liveboard(ctx, station, "")
	if err != nil {
		in.log.Println("ingestLiveboard:", station, err)
		res.failed++
		return res
	}

	depStation := stationFromInfo(&board.StationInfo)
	depStationID, err := depStation.Resolve(in.node)
	if err != nil {
		in.log.Println("ingestLiveboard:", station, err)
		res.failed++
		return res
	}

	for i := range board.Departures.Departure {
		departure := &board.Departures.Departure[i]
		wroteFeedback, err := in.ingestDeparture(depStationID, board, departure)
		if err != nil {
			in.log.Println("ingestLiveboard:", station, "vehicle", departure.Vehicle, err)
			res.failed++
			continue
		}
		res.movements++
		if wroteFeedback {
			res.feedback++
		}
		if departure.Vehicle != "" {
			res.vehicles = append(res.vehicles, departure.Vehicle)
		}
	}
	res.processed++
	return res
}

// ingestDeparture writes one movement fact (and possibly one crowding
// report) for a single liveboard entry. Dimension keys are resolved before
// the fact insert; the liveboard carries no arrival data, so the arrival
// date is set equal to the departure date and the arrival times are left
// unset. This is a known limitation of the upstream endpoint, not a bug.
func (in *Ingestor) ingestDeparture(depStationID int64, board *irail.LiveboardResponse, departure *irail.Departure) (bool, error) {
	arrStation := stationFromInfo(&departure.StationInfo)
	arrStationID, err := arrStation.Resolve(in.node)
	if err != nil {
		return false, err
	}

	vid, err := irail.ParseVehicleID(departure.Vehicle)
	if err != nil {
		return false, err
	}
	train := &dataobjects.Train{
		Number:    vid.Number,
		Operator:  vid.Operator,
		Type:      sql.NullString{String: vid.Type, Valid: vid.Type != ""},
		ShortName: sql.NullString{String: vid.Code, Valid: true},
	}
	trainID, err := train.Resolve(in.node)
	if err != nil {
		return false, err
	}

	scheduled, err := departure.ScheduledTime()
	if err != nil {
		return false, fmt.Errorf("ingestDeparture: bad departure time: %s", err)
	}
	delaySeconds := departure.DelaySeconds()
	actual := scheduled.Add(time.Duration(delaySeconds) * time.Second)

	depDateID, err := dataobjects.NewDateDimension(scheduled).Ensure(in.node)
	if err != nil {
		return false, err
	}

	movement := &dataobjects.TrainMovement{
		TrainID:            trainID,
		DepartureStationID: depStationID,
		ArrivalStationID:   arrStationID,
		DepartureDateID:    depDateID,
		ArrivalDateID:      sql.NullInt64{Int64: depDateID, Valid: true},
		ScheduledDeparture: pq.NullTime{Time: scheduled, Valid: true},
		ActualDeparture:    pq.NullTime{Time: actual, Valid: true},
		// delay is whole minutes, floor division; zero delay is stored as 0
		DelayMinutes: delaySeconds / 60,
		Canceled:     departure.IsCanceled(),
	}
	if departure.Platform != "" {
		movement.Platform = sql.NullString{String: departure.Platform, Valid: true}
	}
	if err := movement.Insert(in.node); err != nil {
		return false, err
	}

	if departure.Occupancy.Name == "" || departure.Connection == "" {
		return false, nil
	}
	feedback := &dataobjects.TrainFeedback{
		ConnectionURI: departure.Connection,
		StationURI:    board.StationInfo.URI,
		Date:          date.NewAt(scheduled),
		VehicleURI:    departure.VehicleInfo.URI,
		Occupancy:     departure.Occupancy.Name,
	}
	if feedback.VehicleURI == "" {
		feedback.VehicleURI = departure.Vehicle
	}
	if err := feedback.Insert(in.node, in.cfg.DedupeFeedback); err != nil {
		return false, err
	}
	return true, nil
}
