package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"busmonitor.luzern.ch/internal/models"
	onebusaway "github.com/OneBusAway/go-sdk"
	"github.com/OneBusAway/go-sdk/option"
)

// ObaClient fetches departures from a OneBusAway server using the
// arrivals-and-departures-for-stop endpoint. The configured route station is
// interpreted as an OBA stop ID.
type ObaClient struct {
	client *onebusaway.Client
	now    func() time.Time
}

// NewObaClient creates an ObaClient against the given OBA server.
func NewObaClient(baseURL, apiKey string) *ObaClient {
	return &ObaClient{
		client: onebusaway.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(baseURL),
		),
		now: time.Now,
	}
}

// Fetch lists arrivals and departures for every configured stop, keeps the
// entries matching the route's short name and headsign filter, and runs the
// shared normalization pipeline. Predicted departure times are preferred
// over scheduled ones when the server provides them.
func (c *ObaClient) Fetch(ctx context.Context, routes []models.Route, hoursAhead int) ([]models.Departure, error) {
	now := c.now()

	var all []models.Departure
	for _, route := range routes {
		params := onebusaway.ArrivalAndDepartureListParams{
			MinutesAfter: onebusaway.F(int64(hoursAhead * 60)),
		}

		response, err := c.client.ArrivalAndDeparture.List(ctx, route.Station, params)
		if err != nil {
			return nil, classifyTransportError(fmt.Errorf("arrivals-and-departures for stop %s failed: %w", route.Station, err))
		}
		if response == nil {
			return nil, NewFetchError(KindParse, fmt.Errorf("empty arrivals-and-departures response for stop %s", route.Station))
		}

		for _, entry := range response.Data.Entry.ArrivalsAndDepartures {
			if entry.RouteShortName != route.RouteID {
				continue
			}
			if route.Destination != "" && !strings.Contains(entry.TripHeadsign, route.Destination) {
				continue
			}

			scheduledMs := int64(entry.ScheduledDepartureTime)
			predictedMs := int64(entry.PredictedDepartureTime)
			departureMs := scheduledMs
			delay := 0
			if predictedMs > 0 {
				departureMs = predictedMs
				delay = int((predictedMs - scheduledMs) / 1000)
			}
			if departureMs == 0 {
				continue
			}

			all = append(all, models.Departure{
				RouteID:       route.RouteID,
				Destination:   entry.TripHeadsign,
				From:          route.Station,
				DelaySeconds:  delay,
				ScheduledTime: time.UnixMilli(departureMs),
			})
		}
	}

	return finalize(all, now, hoursAhead), nil
}
