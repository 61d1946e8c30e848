package ingestor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gbl08ma/sqalx"
	"github.com/hako/durafmt"
	cache "github.com/patrickmn/go-cache"

	"github.com/hajersmiai/trainwarehouse/irail"
)

const (
	defaultLiveboardWorkers  = 8
	defaultConnectionWorkers = 10
)

// Config configures an Ingestor. Node and Client are required; everything
// else has defaults.
type Config struct {
	Node   sqalx.Node
	Client *irail.Client
	Log    *log.Logger

	// Stations restricts the liveboard pass to the given station codes or
	// names; when empty, the full upstream directory is used
	Stations []string

	// FromStations and ToStations seed the connections pass with their
	// Cartesian product (self-pairs excluded)
	FromStations []string
	ToStations   []string

	LiveboardWorkers  int
	ConnectionWorkers int

	// DedupeFeedback drops crowding reports whose natural key was already
	// recorded. Off by default: feedback is an append-only observation log
	// like the other facts.
	DedupeFeedback bool
}

// Ingestor pulls upstream collections and drives the dimension resolvers
// and fact writers per record. Item failures are isolated: one bad station,
// train or disturbance never aborts the enclosing pass.
type Ingestor struct {
	node   sqalx.Node
	client *irail.Client
	log    *log.Logger
	cfg    Config

	// vehicle details are fetched at most once per run window, however many
	// liveboards mention the same train
	vehicleDetails *cache.Cache
}

// New returns an Ingestor for the given configuration
func New(cfg Config) (*Ingestor, error) {
	if cfg.Node == nil {
		return nil, errors.New("NewIngestor: node is required")
	}
	if cfg.Client == nil {
		return nil, errors.New("NewIngestor: client is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.New(os.Stdout, "ingestor", log.Ldate|log.Ltime)
	}
	if cfg.LiveboardWorkers <= 0 {
		cfg.LiveboardWorkers = defaultLiveboardWorkers
	}
	if cfg.ConnectionWorkers <= 0 {
		cfg.ConnectionWorkers = defaultConnectionWorkers
	}
	return &Ingestor{
		node:           cfg.Node,
		client:         cfg.Client,
		log:            cfg.Log,
		cfg:            cfg,
		vehicleDetails: cache.New(30*time.Minute, 10*time.Minute),
	}, nil
}

// Summary describes the outcome of one ingestion run. Partial failures are
// counted, not fatal; a run only errors when it cannot proceed at all.
type Summary struct {
	Start                   time.Time     `json:"start"`
	Duration                time.Duration `json:"duration"`
	StationsLoaded          int           `json:"stationsLoaded"`
	StationsProcessed       int           `json:"stationsProcessed"`
	MovementsWritten        int           `json:"movementsWritten"`
	FeedbackWritten         int           `json:"feedbackWritten"`
	VehiclesDiscovered      int           `json:"vehiclesDiscovered"`
	CompositionUnitsWritten int           `json:"compositionUnitsWritten"`
	DisturbancesProcessed   int           `json:"disturbancesProcessed"`
	ConnectionsWritten      int           `json:"connectionsWritten"`
	ItemsFailed             int           `json:"itemsFailed"`
}

func (s *Summary) String() string {
	return fmt.Sprintf("%d stations, %d movements, %d composition units, %d disturbances, %d connections, %d feedback reports, %d failed items in %s",
		s.StationsProcessed, s.MovementsWritten, s.CompositionUnitsWritten,
		s.DisturbancesProcessed, s.ConnectionsWritten, s.FeedbackWritten,
		s.ItemsFailed,
		durafmt.Parse(s.Duration.Round(time.Second)).String())
}

type passes struct {
	liveboards   bool
	disturbances bool
	connections  bool
}

// Run executes a full ingestion: station directory, liveboards for the
// configured station set, compositions for every train discovered on those
// liveboards, and the disturbance feed
func (in *Ingestor) Run(ctx context.Context) (*Summary, error) {
	return in.run(ctx, passes{liveboards: true, disturbances: true})
}

// RunExtended executes Run plus the point-to-point connections pass
func (in *Ingestor) RunExtended(ctx context.Context) (*Summary, error) {
	return in.run(ctx, passes{liveboards: true, disturbances: true, connections: true})
}

// RunLiveboards ingests only liveboards and the compositions they discover;
// this is the fast timer trigger
func (in *Ingestor) RunLiveboards(ctx context.Context) (*Summary, error) {
	return in.run(ctx, passes{liveboards: true})
}

// RunFeeds ingests only the disturbance feed and the connections pass; this
// is the slow timer trigger
func (in *Ingestor) RunFeeds(ctx context.Context) (*Summary, error) {
	return in.run(ctx, passes{disturbances: true, connections: true})
}

func (in *Ingestor) run(ctx context.Context, p passes) (*Summary, error) {
	summary := &Summary{Start: time.Now()}

	if p.liveboards {
		directory, err := in.ingestStationDirectory(ctx, summary)
		if err != nil && len(in.cfg.Stations) == 0 {
			// without a station set there is nothing to ingest
			return nil, fmt.Errorf("Run: %s", err)
		}

		stations := in.cfg.Stations
		if len(stations) == 0 {
			stations = make([]string, len(directory))
			for i := range directory {
				stations[i] = directory[i].ID
			}
		}

		vehicles := in.ingestLiveboards(ctx, stations, summary)
		summary.VehiclesDiscovered = len(vehicles)

		in.ingestCompositions(ctx, vehicles, summary)
	}

	if p.disturbances {
		in.ingestDisturbances(ctx, summary)
	}

	if p.connections {
		in.ingestConnections(ctx, summary)
	}

	summary.Duration = time.Since(summary.Start)
	in.log.Println("Run finished:", summary)
	return summary, nil
}
