package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"busmonitor.luzern.ch/internal/models"
)

// DefaultStationboardURL is the public transport.opendata.ch stationboard
// endpoint used when no override is configured.
const DefaultStationboardURL = "http://transport.opendata.ch/v1/stationboard"

// stationboardLimit caps the number of entries requested per station. The
// upstream board mixes all lines, so the limit has to be well above the
// number of departures we actually keep.
const stationboardLimit = 50

// OpendataClient fetches departures from the transport.opendata.ch
// stationboard API, one request per configured route.
type OpendataClient struct {
	baseURL string
	client  *http.Client
	now     func() time.Time
}

// NewOpendataClient creates an OpendataClient. An empty baseURL selects the
// public endpoint.
func NewOpendataClient(baseURL string, client *http.Client) *OpendataClient {
	if baseURL == "" {
		baseURL = DefaultStationboardURL
	}
	return &OpendataClient{
		baseURL: baseURL,
		client:  client,
		now:     time.Now,
	}
}

// stationboardResponse mirrors the subset of the stationboard payload we
// consume. Departure timestamps arrive as ISO 8601 strings, sometimes with a
// four-digit zone offset ("+0200") instead of RFC 3339's "+02:00".
type stationboardResponse struct {
	Stationboard []stationboardEntry `json:"stationboard"`
}

type stationboardEntry struct {
	Number string           `json:"number"`
	To     string           `json:"to"`
	Stop   stationboardStop `json:"stop"`
}

type stationboardStop struct {
	Departure string `json:"departure"`
	Delay     *int   `json:"delay"`
	Platform  string `json:"platform"`
}

// Fetch queries the stationboard for every configured route, keeps the
// entries matching the route's line number and destination headsign, and
// runs the shared normalization pipeline over the merged result. The first
// route failure fails the whole cycle.
func (c *OpendataClient) Fetch(ctx context.Context, routes []models.Route, hoursAhead int) ([]models.Departure, error) {
	now := c.now()

	var all []models.Departure
	for _, route := range routes {
		departures, err := c.fetchRoute(ctx, route)
		if err != nil {
			return nil, err
		}
		all = append(all, departures...)
	}

	return finalize(all, now, hoursAhead), nil
}

func (c *OpendataClient) fetchRoute(ctx context.Context, route models.Route) ([]models.Departure, error) {
	params := url.Values{}
	params.Set("station", route.Station)
	params.Set("limit", strconv.Itoa(stationboardLimit))
	params.Set("transportations", "bus")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, NewFetchError(KindNetwork, fmt.Errorf("failed to create stationboard request: %w", err))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(fmt.Errorf("stationboard request for %s failed: %w", route.Station, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, NewFetchError(KindNetwork, fmt.Errorf("stationboard for %s returned status %d", route.Station, resp.StatusCode))
	}

	var board stationboardResponse
	if err := json.NewDecoder(resp.Body).Decode(&board); err != nil {
		return nil, NewFetchError(KindParse, fmt.Errorf("failed to decode stationboard for %s: %w", route.Station, err))
	}

	var departures []models.Departure
	for _, entry := range board.Stationboard {
		if !matchesRoute(entry, route) {
			continue
		}

		scheduled, err := parseStationboardTime(entry.Stop.Departure)
		if err != nil {
			// A single unparseable timestamp should not poison the whole
			// board; skip the entry like the rest of the pipeline drops
			// out-of-window departures.
			continue
		}

		delay := 0
		if entry.Stop.Delay != nil {
			delay = *entry.Stop.Delay
		}

		departures = append(departures, models.Departure{
			RouteID:       route.RouteID,
			Destination:   entry.To,
			From:          route.Station,
			Platform:      entry.Stop.Platform,
			DelaySeconds:  delay,
			ScheduledTime: scheduled,
		})
	}

	return departures, nil
}

// matchesRoute reports whether a stationboard entry belongs to the monitored
// route: the line number must match exactly and, when a destination filter is
// configured, the headsign must contain it.
func matchesRoute(entry stationboardEntry, route models.Route) bool {
	if entry.Number != route.RouteID {
		return false
	}
	if route.Destination == "" {
		return true
	}
	return strings.Contains(entry.To, route.Destination)
}

// parseStationboardTime accepts both RFC 3339 timestamps and the upstream's
// legacy "+0200" zone offset form.
func parseStationboardTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05-0700", value)
}
