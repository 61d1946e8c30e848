package ingestor

import (
	"context"

	"github.com/alitto/pond/v2"

	"github.com/hajersmiai/trainwarehouse/dataobjects"
)

type connectionsResult struct {
	written int
	failed  int
}

// ingestConnections fetches point-to-point connections for the Cartesian
// product of the configured from/to station lists (self-pairs excluded) on
// a worker pool, and writes one connection fact per route result. Each
// route's failure is isolated.
func (in *Ingestor) ingestConnections(ctx context.Context, summary *Summary) {
	pool := pond.NewResultPool[connectionsResult](in.cfg.ConnectionWorkers)
	defer pool.StopAndWait()
	group := pool.NewGroupContext(ctx)

	for _, from := range in.cfg.FromStations {
		for _, to := range in.cfg.ToStations {
			if from == to {
				continue
			}
			from, to := from, to
			group.SubmitErr(func() (connectionsResult, error) {
				return in.ingestRoute(ctx, from, to), nil
			})
		}
	}

	results, err := group.Wait()
	if err != nil {
		in.log.Println("ingestConnections:", err)
	}
	for _, res := range results {
		summary.ConnectionsWritten += res.written
		summary.ItemsFailed += res.failed
	}
}

func (in *Ingestor) ingestRoute(ctx context.Context, from, to string) connectionsResult {
	res := connectionsResult{}

	connections, err := in.client.Connections(ctx, from, to)
	if err != nil {
		in.log.Println("ingestRoute:", from, "->", to, err)
		res.failed++
		return res
	}

	for i := range connections {
		connection := &connections[i]
		departureTime, err := connection.DepartureTime()
		if err != nil {
			in.log.Println("ingestRoute:", from, "->", to, "bad departure time:", err)
			res.failed++
			continue
		}
		arrivalTime, err := connection.ArrivalTime()
		if err != nil {
			in.log.Println("ingestRoute:", from, "->", to, "bad arrival time:", err)
			res.failed++
			continue
		}

		fact := &dataobjects.TrainConnection{
			DepartureStation: from,
			ArrivalStation:   to,
			DepartureTime:    departureTime,
			ArrivalTime:      arrivalTime,
			Duration:         nullable(connection.Duration),
			Vehicle:          nullable(connection.Departure.Vehicle),
			Vias:             connection.ViaCount(),
		}
		if err := fact.Insert(in.node); err != nil {
			in.log.Println("ingestRoute:", from, "->", to, err)
			res.failed++
			continue
		}
		res.written++
	}
	return res
}
