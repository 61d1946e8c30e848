package irail

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient(server.URL, "en", nil)
	client.MaxRetries = 0
	return client
}

func TestStations(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stations/", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "en", r.URL.Query().Get("lang"))
		w.Write([]byte(`{"stations":{"station":[
			{"@id":"http://irail.be/stations/NMBS/008821006","id":"BE.NMBS.008821006",
			 "name":"Antwerp-Central","standardname":"Antwerpen-Centraal",
			 "locationX":"4.421101","locationY":"51.2172"},
			{"@id":"http://irail.be/stations/NMBS/008892007","id":"BE.NMBS.008892007",
			 "name":"Ghent-Sint-Pieters","standardname":"Gent-Sint-Pieters",
			 "locationX":"3.710675","locationY":"51.035896"}
		]}}`))
	})

	stations, err := client.Stations(context.Background())
	require.NoError(t, err)
	require.Len(t, stations, 2)

	assert.Equal(t, "BE.NMBS.008821006", stations[0].ID)
	assert.Equal(t, "Antwerp-Central", stations[0].Name)
	assert.Equal(t, "Antwerpen-Centraal", stations[0].StandardName)
	lat, ok := stations[0].Latitude()
	require.True(t, ok)
	assert.InDelta(t, 51.2172, lat, 1e-9)
	lon, ok := stations[0].Longitude()
	require.True(t, ok)
	assert.InDelta(t, 4.421101, lon, 1e-9)
}

func TestLiveboard(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/liveboard/", r.URL.Path)
		assert.Equal(t, "Gent-Sint-Pieters", r.URL.Query().Get("station"))
		assert.Equal(t, "departure", r.URL.Query().Get("arrdep"))
		w.Write([]byte(`{"stationinfo":{"id":"BE.NMBS.008892007","name":"Ghent-Sint-Pieters"},
			"departures":{"departure":[
				{"vehicle":"BE.NMBS.IC3033","time":"1754382600","delay":"120","platform":"4",
				 "canceled":"0","departureConnection":"http://irail.be/connections/8892007/20250805/IC3033",
				 "stationinfo":{"id":"BE.NMBS.008821006","name":"Antwerp-Central"},
				 "occupancy":{"@id":"http://api.irail.be/terms/low","name":"low"}},
				{"vehicle":"BE.NMBS.L562","time":"1754382900","delay":"0","platform":"7","canceled":"1",
				 "stationinfo":{"id":"BE.NMBS.008821196","name":"Antwerp-Berchem"}}
			]}}`))
	})

	board, err := client.Liveboard(context.Background(), "Gent-Sint-Pieters", "")
	require.NoError(t, err)
	require.Len(t, board.Departures.Departure, 2)

	first := board.Departures.Departure[0]
	assert.Equal(t, "BE.NMBS.IC3033", first.Vehicle)
	assert.Equal(t, 120, first.DelaySeconds())
	assert.False(t, first.IsCanceled())
	assert.Equal(t, "low", first.Occupancy.Name)
	scheduled, err := first.ScheduledTime()
	require.NoError(t, err)
	assert.Equal(t, int64(1754382600), scheduled.Unix())

	assert.True(t, board.Departures.Departure[1].IsCanceled())
}

// the upstream XML-to-JSON conversion encodes one-element collections as a
// bare object; the decoder must accept both shapes
func TestLiveboardSingleDeparture(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"departures":{"departure":
			{"vehicle":"BE.NMBS.IC3033","time":"1754382600","delay":"0","canceled":"0"}
		}}`))
	})

	board, err := client.Liveboard(context.Background(), "Ghent-Sint-Pieters", "")
	require.NoError(t, err)
	require.Len(t, board.Departures.Departure, 1)
	assert.Equal(t, "BE.NMBS.IC3033", board.Departures.Departure[0].Vehicle)
}

func TestVehicleNotFound(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.Vehicle(context.Background(), "BE.NMBS.IC9999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVehicleEmptyName(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"vehicleinfo":{"name":""}}`))
	})

	_, err := client.Vehicle(context.Background(), "BE.NMBS.IC9999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCompositionFlattening(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/composition/", r.URL.Path)
		w.Write([]byte(`{"vehicle":"BE.NMBS.IC3033","composition":{"segments":{"segment":
			{"origin":{"id":"BE.NMBS.008892007","name":"Ghent-Sint-Pieters"},
			 "destination":{"id":"BE.NMBS.008821006","name":"Antwerp-Central"},
			 "composition":{"units":{"unit":[
				{"id":"0","materialType":{"parent_type":"AM96","sub_type":"c","orientation":"LEFT"},
				 "hasToilets":"1","hasAirco":"1","hasBikeSection":"0",
				 "seatsSecondClass":"66","seatsFirstClass":"0","lengthInMeter":"26","tractionPosition":"1",
				 "materialNumber":"475","tractionType":"AM/MR"},
				{"id":"1","materialType":{"parent_type":"AM96","sub_type":"b","orientation":"LEFT"},
				 "hasToilets":"0","seatsSecondClass":"102","lengthInMeter":"26","tractionPosition":"1"}
			 ]}}}}}}`))
	})

	resp, err := client.Composition(context.Background(), "BE.NMBS.IC3033")
	require.NoError(t, err)

	units := ExtractUnits(resp)
	require.Len(t, units, 2)

	first := units[0]
	assert.Equal(t, "BE.NMBS.IC3033", first.VehicleID)
	assert.Equal(t, "BE.NMBS.008892007", first.SegmentOriginCode)
	assert.Equal(t, "Antwerp-Central", first.SegmentDestinationName)
	assert.Equal(t, "AM96", first.ParentType)
	assert.True(t, first.HasToilets)
	assert.True(t, first.HasAirco)
	assert.False(t, first.HasBikeSection)
	assert.Equal(t, 66, first.SeatsSecondClass)
	assert.Equal(t, 26, first.LengthInMeter)
	assert.Equal(t, "475", first.MaterialNumber)

	assert.False(t, units[1].HasToilets)
	assert.Equal(t, 102, units[1].SeatsSecondClass)
}

func TestDisturbances(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"disturbance":[
			{"id":"0","title":"Works between Brussels and Ghent",
			 "description":"Buses replace trains.","type":"planned",
			 "link":"https://www.belgiantrain.be/works","timestamp":"1754380000"}
		]}`))
	})

	records, err := client.Disturbances(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Works between Brussels and Ghent", records[0].Title)
	reported, ok := records[0].ReportedAt()
	require.True(t, ok)
	assert.Equal(t, int64(1754380000), reported.Unix())
}

func TestConnections(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Ghent-Sint-Pieters", r.URL.Query().Get("from"))
		assert.Equal(t, "Antwerp-Central", r.URL.Query().Get("to"))
		w.Write([]byte(`{"connection":[
			{"departure":{"station":"Ghent-Sint-Pieters","time":"1754382600","vehicle":"BE.NMBS.IC3033",
			  "stationinfo":{"id":"BE.NMBS.008892007","name":"Ghent-Sint-Pieters"}},
			 "arrival":{"station":"Antwerp-Central","time":"1754385600",
			  "stationinfo":{"id":"BE.NMBS.008821006","name":"Antwerp-Central"}},
			 "duration":"3000",
			 "vias":{"number":"1","via":[{}]}}
		]}`))
	})

	connections, err := client.Connections(context.Background(), "Ghent-Sint-Pieters", "Antwerp-Central")
	require.NoError(t, err)
	require.Len(t, connections, 1)
	assert.Equal(t, "BE.NMBS.IC3033", connections[0].Departure.Vehicle)
	assert.Equal(t, 1, connections[0].ViaCount())
	dep, err := connections[0].DepartureTime()
	require.NoError(t, err)
	arr, err := connections[0].ArrivalTime()
	require.NoError(t, err)
	assert.Equal(t, int64(3000), int64(arr.Sub(dep).Seconds()))
}

func TestParseErrorNotRetried(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer server.Close()
	client := NewClient(server.URL, "en", nil)

	_, err := client.Stations(context.Background())
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 1, calls)
}

func TestTransportErrorRetried(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"stations":{"station":[]}}`))
	}))
	defer server.Close()
	client := NewClient(server.URL, "en", nil)

	_, err := client.Stations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}
