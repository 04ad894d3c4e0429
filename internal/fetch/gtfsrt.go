package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"busmonitor.luzern.ch/internal/models"
	"github.com/jamespfennell/gtfs"
)

// GtfsRtClient fetches departures from a GTFS-Realtime TripUpdates feed.
// The whole feed is downloaded once per cycle and filtered locally against
// the configured routes.
type GtfsRtClient struct {
	feedURL     string
	headerKey   string
	headerValue string
	client      *http.Client
	now         func() time.Time
}

// NewGtfsRtClient creates a GtfsRtClient for the given feed URL. Some feeds
// require an API key passed as a request header; headerKey/headerValue may be
// empty when the feed is open.
func NewGtfsRtClient(feedURL, headerKey, headerValue string, client *http.Client) *GtfsRtClient {
	return &GtfsRtClient{
		feedURL:     feedURL,
		headerKey:   headerKey,
		headerValue: headerValue,
		client:      client,
		now:         time.Now,
	}
}

// Fetch downloads and parses the TripUpdates feed, then extracts a departure
// for every stop-time update belonging to a configured route. GTFS-RT trip
// updates carry no headsign, so the configured route label doubles as the
// destination.
func (c *GtfsRtClient) Fetch(ctx context.Context, routes []models.Route, hoursAhead int) ([]models.Departure, error) {
	now := c.now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return nil, NewFetchError(KindNetwork, fmt.Errorf("failed to create GTFS-RT request: %w", err))
	}
	if c.headerKey != "" && c.headerValue != "" {
		req.Header.Set(c.headerKey, c.headerValue)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(fmt.Errorf("GTFS-RT request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, NewFetchError(KindNetwork, fmt.Errorf("GTFS-RT feed returned status %d", resp.StatusCode))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportError(fmt.Errorf("failed to read GTFS-RT feed: %w", err))
	}

	realtime, err := gtfs.ParseRealtime(data, &gtfs.ParseRealtimeOptions{})
	if err != nil {
		return nil, NewFetchError(KindParse, fmt.Errorf("failed to parse GTFS-RT feed: %w", err))
	}

	byRouteID := make(map[string]models.Route, len(routes))
	for _, route := range routes {
		byRouteID[route.RouteID] = route
	}

	var departures []models.Departure
	for _, trip := range realtime.Trips {
		route, ok := byRouteID[trip.ID.RouteID]
		if !ok {
			continue
		}
		for _, update := range trip.StopTimeUpdates {
			if update.Departure == nil || update.Departure.Time == nil {
				continue
			}

			from := route.Station
			if update.StopID != nil {
				from = *update.StopID
			}
			delay := 0
			if update.Departure.Delay != nil {
				delay = int(update.Departure.Delay.Seconds())
			}

			departures = append(departures, models.Departure{
				RouteID:       route.RouteID,
				Destination:   route.Label,
				From:          from,
				DelaySeconds:  delay,
				ScheduledTime: *update.Departure.Time,
			})
		}
	}

	return finalize(departures, now, hoursAhead), nil
}
