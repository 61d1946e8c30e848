package irail

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const defaultBaseURL = "https://api.irail.be"

// Client is a typed wrapper around the iRail HTTP API. Fetches carry a
// bounded timeout and transport failures are retried with exponential
// backoff up to MaxRetries before the item is abandoned.
type Client struct {
	BaseURL    string
	Lang       string
	MaxRetries uint64
	HTTPClient *http.Client
	Log        *log.Logger
}

// NewClient returns a Client with the given base URL (the production API
// when empty) and language
func NewClient(baseURL, lang string, logger *log.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if lang == "" {
		lang = "en"
	}
	return &Client{
		BaseURL:    baseURL,
		Lang:       lang,
		MaxRetries: 3,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Log:        logger,
	}
}

// Stations returns the full station directory
func (c *Client) Stations(ctx context.Context) ([]StationInfo, error) {
	var resp stationsResponse
	params := url.Values{}
	err := c.getJSON(ctx, "stations", params, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Stations.Station, nil
}

// Liveboard returns the liveboard for a station, identified by name or
// upstream code. mode is "departure" or "arrival"; empty means departure.
func (c *Client) Liveboard(ctx context.Context, station, mode string) (*LiveboardResponse, error) {
	if mode == "" {
		mode = "departure"
	}
	params := url.Values{}
	params.Set("station", station)
	params.Set("arrdep", mode)
	var resp LiveboardResponse
	err := c.getJSON(ctx, "liveboard", params, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Vehicle returns the detail record for a single train
func (c *Client) Vehicle(ctx context.Context, id string) (*VehicleResponse, error) {
	params := url.Values{}
	params.Set("id", id)
	var resp VehicleResponse
	err := c.getJSON(ctx, "vehicle", params, &resp)
	if err != nil {
		return nil, err
	}
	if resp.VehicleInfo.Name == "" {
		return nil, ErrNotFound
	}
	return &resp, nil
}

// Composition returns the composition detail for a single train
func (c *Client) Composition(ctx context.Context, id string) (*CompositionResponse, error) {
	params := url.Values{}
	params.Set("id", id)
	var resp CompositionResponse
	err := c.getJSON(ctx, "composition", params, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Disturbances returns the current disturbance feed
func (c *Client) Disturbances(ctx context.Context) ([]DisturbanceRecord, error) {
	params := url.Values{}
	params.Set("lineBreakCharacter", "")
	var resp disturbancesResponse
	err := c.getJSON(ctx, "disturbances", params, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Disturbance, nil
}

// Connections returns the point-to-point connections between two stations
func (c *Client) Connections(ctx context.Context, from, to string) ([]Connection, error) {
	params := url.Values{}
	params.Set("from", from)
	params.Set("to", to)
	params.Set("timesel", "departure")
	var resp connectionsResponse
	err := c.getJSON(ctx, "connections", params, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Connection, nil
}

// getJSON performs a GET against the given endpoint and decodes the JSON
// response into dest. Only transport failures are retried; 404s and
// malformed payloads abort immediately.
func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, dest interface{}) error {
	params.Set("format", "json")
	params.Set("lang", c.Lang)
	u := fmt.Sprintf("%s/%s/?%s", c.BaseURL, endpoint, params.Encode())

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return &TransportError{URL: u, Err: err}
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return backoff.Permanent(ErrNotFound)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return &TransportError{URL: u, Err: fmt.Errorf("unexpected status %s", resp.Status)}
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return &TransportError{URL: u, Err: err}
		}
		if err := json.Unmarshal(body, dest); err != nil {
			return backoff.Permanent(&ParseError{URL: u, Err: err})
		}
		return nil
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.MaxRetries), ctx)
	err := backoff.RetryNotify(operation, bo, func(err error, next time.Duration) {
		if c.Log != nil {
			c.Log.Printf("retrying %s in %s: %s\n", endpoint, next.Round(time.Millisecond), err)
		}
	})
	return err
}
