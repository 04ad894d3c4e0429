package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"busmonitor.luzern.ch/internal/models"
	gtfsrt "github.com/jamespfennell/gtfs/proto"
	"google.golang.org/protobuf/proto"
)

// buildTripUpdatesFeed marshals a minimal TripUpdates feed with one departure
// per (routeID, departureTime) pair.
func buildTripUpdatesFeed(t *testing.T, now time.Time, departures map[string]time.Time) []byte {
	t.Helper()

	entities := make([]*gtfsrt.FeedEntity, 0, len(departures))
	for routeID, departureTime := range departures {
		entities = append(entities, &gtfsrt.FeedEntity{
			Id: proto.String("trip-" + routeID),
			TripUpdate: &gtfsrt.TripUpdate{
				Trip: &gtfsrt.TripDescriptor{
					TripId:  proto.String("trip-" + routeID),
					RouteId: proto.String(routeID),
				},
				StopTimeUpdate: []*gtfsrt.TripUpdate_StopTimeUpdate{
					{
						StopId: proto.String("8505000"),
						Departure: &gtfsrt.TripUpdate_StopTimeEvent{
							Time:  proto.Int64(departureTime.Unix()),
							Delay: proto.Int32(60),
						},
					},
				},
			},
		})
	}

	incrementality := gtfsrt.FeedHeader_FULL_DATASET
	feed := &gtfsrt.FeedMessage{
		Header: &gtfsrt.FeedHeader{
			GtfsRealtimeVersion: proto.String("2.0"),
			Incrementality:      &incrementality,
			Timestamp:           proto.Uint64(uint64(now.Unix())),
		},
		Entity: entities,
	}

	data, err := proto.Marshal(feed)
	if err != nil {
		t.Fatalf("failed to marshal feed: %v", err)
	}
	return data
}

func setupGtfsRtServer(t *testing.T, feed []byte, wantHeaderKey, wantHeaderValue string) *httptest.Server {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if wantHeaderKey != "" && r.Header.Get(wantHeaderKey) != wantHeaderValue {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write(feed)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestGtfsRtFetch(t *testing.T) {
	now := time.Now().Truncate(time.Second)

	feed := buildTripUpdatesFeed(t, now, map[string]time.Time{
		"1":  now.Add(10 * time.Minute),  // monitored, inside window
		"73": now.Add(15 * time.Minute),  // not monitored
		"2":  now.Add(150 * time.Minute), // monitored, outside 2h window
	})

	ts := setupGtfsRtServer(t, feed, "Authorization", "test-key")

	client := NewGtfsRtClient(ts.URL, "Authorization", "test-key", ts.Client())
	client.now = func() time.Time { return now }

	routes := []models.Route{
		{RouteID: "1", Label: "Express", Station: "Luzern, Bahnhof"},
		{RouteID: "2", Label: "Ring", Station: "Luzern, Bahnhof"},
	}

	departures, err := client.Fetch(context.Background(), routes, 2)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(departures) != 1 {
		t.Fatalf("expected 1 departure, got %d", len(departures))
	}

	d := departures[0]
	if d.RouteID != "1" {
		t.Errorf("expected route_id 1, got %s", d.RouteID)
	}
	if d.Destination != "Express" {
		t.Errorf("expected the route label as destination, got %q", d.Destination)
	}
	if d.From != "8505000" {
		t.Errorf("expected the feed stop id, got %q", d.From)
	}
	if d.MinutesUntil != 10 {
		t.Errorf("expected minutes_until 10, got %d", d.MinutesUntil)
	}
	if d.DelaySeconds != 60 {
		t.Errorf("expected delay_seconds 60, got %d", d.DelaySeconds)
	}
}

func TestGtfsRtFetchParseError(t *testing.T) {
	ts := setupGtfsRtServer(t, []byte("not a protobuf feed"), "", "")

	client := NewGtfsRtClient(ts.URL, "", "", ts.Client())

	_, err := client.Fetch(context.Background(), []models.Route{{RouteID: "1", Label: "Express", Station: "Luzern, Bahnhof"}}, 2)
	if err == nil {
		t.Fatal("expected a parse error, got nil")
	}

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected a *FetchError, got %T", err)
	}
	if fetchErr.Kind != KindParse {
		t.Errorf("expected kind parse, got %s", fetchErr.Kind)
	}
}

func TestGtfsRtFetchUnreachableFeed(t *testing.T) {
	client := NewGtfsRtClient("http://127.0.0.1:1/gtfs-rt", "", "", &http.Client{Timeout: time.Second})

	_, err := client.Fetch(context.Background(), []models.Route{{RouteID: "1", Label: "Express", Station: "Luzern, Bahnhof"}}, 2)
	if err == nil {
		t.Fatal("expected an error, got nil")
	}

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected a *FetchError, got %T", err)
	}
	if fetchErr.Kind != KindNetwork && fetchErr.Kind != KindTimeout {
		t.Errorf("expected a transport error kind, got %s", fetchErr.Kind)
	}
}
