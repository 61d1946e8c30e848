package irail

import (
	"encoding/json"
	"strconv"
	"time"
)

// StationInfo describes a station as returned by the upstream API.
// Coordinates arrive as strings and are converted by the accessors below.
type StationInfo struct {
	URI          string `json:"@id"`
	ID           string `json:"id"`
	Name         string `json:"name"`
	StandardName string `json:"standardname"`
	LocationX    string `json:"locationX"`
	LocationY    string `json:"locationY"`
}

// Latitude returns the station latitude, or ok=false when absent
func (s *StationInfo) Latitude() (float64, bool) {
	return parseCoord(s.LocationY)
}

// Longitude returns the station longitude, or ok=false when absent
func (s *StationInfo) Longitude() (float64, bool) {
	return parseCoord(s.LocationX)
}

func parseCoord(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

type stationsResponse struct {
	Stations struct {
		Station []StationInfo `json:"station"`
	} `json:"stations"`
}

// Departure is one liveboard entry
type Departure struct {
	Vehicle     string      `json:"vehicle"`
	Time        string      `json:"time"`
	Delay       string      `json:"delay"`
	Platform    string      `json:"platform"`
	Canceled    string      `json:"canceled"`
	Connection  string      `json:"departureConnection"`
	StationInfo StationInfo `json:"stationinfo"`
	VehicleInfo struct {
		URI       string `json:"@id"`
		Name      string `json:"name"`
		ShortName string `json:"shortname"`
	} `json:"vehicleinfo"`
	Occupancy struct {
		URI  string `json:"@id"`
		Name string `json:"name"`
	} `json:"occupancy"`
}

// ScheduledTime returns the scheduled departure time
func (d *Departure) ScheduledTime() (time.Time, error) {
	return parseUnix(d.Time)
}

// DelaySeconds returns the departure delay in seconds, 0 when absent
func (d *Departure) DelaySeconds() int {
	n, _ := strconv.Atoi(d.Delay)
	return n
}

// IsCanceled reports whether the departure is marked canceled
func (d *Departure) IsCanceled() bool {
	return d.Canceled == "1"
}

// LiveboardResponse is the liveboard for a single station
type LiveboardResponse struct {
	StationInfo StationInfo `json:"stationinfo"`
	Departures  struct {
		Departure departureList `json:"departure"`
	} `json:"departures"`
}

// VehicleResponse is the detail record for a single train
type VehicleResponse struct {
	VehicleInfo struct {
		URI       string `json:"@id"`
		Name      string `json:"name"`
		ShortName string `json:"shortname"`
	} `json:"vehicleinfo"`
	Stops struct {
		Stop stopList `json:"stop"`
	} `json:"stops"`
}

// Stop is one stop of a vehicle journey
type Stop struct {
	Station     string      `json:"station"`
	StationInfo StationInfo `json:"stationinfo"`
	Time        string      `json:"time"`
	Delay       string      `json:"delay"`
	Platform    string      `json:"platform"`
}

// CompositionResponse is the composition detail for a single train
type CompositionResponse struct {
	Vehicle     string `json:"vehicle"`
	Composition struct {
		Segments struct {
			Segment segmentList `json:"segment"`
		} `json:"segments"`
	} `json:"composition"`
}

// Segment is a composition segment between two endpoints; trains may swap
// units along the way, so each segment carries its own unit list
type Segment struct {
	Origin      StationInfo `json:"origin"`
	Destination StationInfo `json:"destination"`
	Composition struct {
		Units struct {
			Unit unitList `json:"unit"`
		} `json:"units"`
	} `json:"composition"`
}

// Unit is a single railcar inside a segment, with all flags and counts
// still in their upstream string encoding
type Unit struct {
	ID           string `json:"id"`
	MaterialType struct {
		ParentType  string `json:"parent_type"`
		SubType     string `json:"sub_type"`
		Orientation string `json:"orientation"`
	} `json:"materialType"`
	HasToilets                    string `json:"hasToilets"`
	HasTables                     string `json:"hasTables"`
	HasSecondClassOutlets         string `json:"hasSecondClassOutlets"`
	HasFirstClassOutlets          string `json:"hasFirstClassOutlets"`
	HasHeating                    string `json:"hasHeating"`
	HasAirco                      string `json:"hasAirco"`
	MaterialNumber                string `json:"materialNumber"`
	TractionType                  string `json:"tractionType"`
	CanPassToNextUnit             string `json:"canPassToNextUnit"`
	StandingPlacesSecondClass     string `json:"standingPlacesSecondClass"`
	StandingPlacesFirstClass      string `json:"standingPlacesFirstClass"`
	SeatsCoupeSecondClass         string `json:"seatsCoupeSecondClass"`
	SeatsCoupeFirstClass          string `json:"seatsCoupeFirstClass"`
	SeatsSecondClass              string `json:"seatsSecondClass"`
	SeatsFirstClass               string `json:"seatsFirstClass"`
	LengthInMeter                 string `json:"lengthInMeter"`
	HasSemiAutomaticInteriorDoors string `json:"hasSemiAutomaticInteriorDoors"`
	HasLuggageSection             string `json:"hasLuggageSection"`
	MaterialSubTypeName           string `json:"materialSubTypeName"`
	TractionPosition              string `json:"tractionPosition"`
	HasPrmSection                 string `json:"hasPrmSection"`
	HasPriorityPlaces             string `json:"hasPriorityPlaces"`
	HasBikeSection                string `json:"hasBikeSection"`
}

// DisturbanceRecord is one entry of the disturbance feed
type DisturbanceRecord struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Link        string `json:"link"`
	Timestamp   string `json:"timestamp"`
	Attachment  string `json:"attachment"`
}

// ReportedAt returns the time the disturbance was reported, or ok=false
// when the feed carries no timestamp
func (d *DisturbanceRecord) ReportedAt() (time.Time, bool) {
	t, err := parseUnix(d.Timestamp)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

type disturbancesResponse struct {
	Disturbance disturbanceList `json:"disturbance"`
}

// Connection is one point-to-point route result
type Connection struct {
	Departure struct {
		Station     string      `json:"station"`
		StationInfo StationInfo `json:"stationinfo"`
		Time        string      `json:"time"`
		Vehicle     string      `json:"vehicle"`
	} `json:"departure"`
	Arrival struct {
		Station     string      `json:"station"`
		StationInfo StationInfo `json:"stationinfo"`
		Time        string      `json:"time"`
	} `json:"arrival"`
	Duration string `json:"duration"`
	Vias     struct {
		Number string `json:"number"`
		Via    []json.RawMessage `json:"via"`
	} `json:"vias"`
}

// DepartureTime returns the connection departure time
func (c *Connection) DepartureTime() (time.Time, error) {
	return parseUnix(c.Departure.Time)
}

// ArrivalTime returns the connection arrival time
func (c *Connection) ArrivalTime() (time.Time, error) {
	return parseUnix(c.Arrival.Time)
}

// ViaCount returns the number of intermediate transfers
func (c *Connection) ViaCount() int {
	return len(c.Vias.Via)
}

type connectionsResponse struct {
	Connection connectionList `json:"connection"`
}

func parseUnix(s string) (time.Time, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(n, 0), nil
}

// The upstream API converts XML to JSON and encodes one-element collections
// as a bare object instead of a one-element array. The list types below
// tolerate both encodings.

type departureList []Departure

func (l *departureList) UnmarshalJSON(b []byte) error { return unmarshalList(b, (*[]Departure)(l)) }

type stopList []Stop

func (l *stopList) UnmarshalJSON(b []byte) error { return unmarshalList(b, (*[]Stop)(l)) }

type segmentList []Segment

func (l *segmentList) UnmarshalJSON(b []byte) error { return unmarshalList(b, (*[]Segment)(l)) }

type unitList []Unit

func (l *unitList) UnmarshalJSON(b []byte) error { return unmarshalList(b, (*[]Unit)(l)) }

type disturbanceList []DisturbanceRecord

func (l *disturbanceList) UnmarshalJSON(b []byte) error {
	return unmarshalList(b, (*[]DisturbanceRecord)(l))
}

type connectionList []Connection

func (l *connectionList) UnmarshalJSON(b []byte) error { return unmarshalList(b, (*[]Connection)(l)) }

func unmarshalList[T any](b []byte, dest *[]T) error {
	var many []T
	if err := json.Unmarshal(b, &many); err == nil {
		*dest = many
		return nil
	}
	var one T
	if err := json.Unmarshal(b, &one); err != nil {
		return err
	}
	*dest = []T{one}
	return nil
}
