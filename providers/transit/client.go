package transit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"sort"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	Disclaimer = "Public transport details can change. Verify via PTV."
	verifyLink = "https://www.ptv.vic.gov.au/"

	searchRadiusM  = 500
	maxStopsFound  = 10
	maxStopsEnrich = 5
	maxDepartures  = 3
)

type Departure struct {
	RouteNumber   string `json:"route_number"`
	Direction     string `json:"direction"`
	ScheduledTime string `json:"scheduled_time"`
	EstimatedTime string `json:"estimated_time,omitempty"`
}

type Stop struct {
	StopID     int         `json:"stop_id"`
	StopName   string      `json:"stop_name"`
	StopSuburb string      `json:"stop_suburb,omitempty"`
	RouteType  int         `json:"route_type"`
	DistanceM  int         `json:"distance_m"`
	Departures []Departure `json:"departures"`
}

type Result struct {
	Nearest    []Stop `json:"nearest"`
	VerifyLink string `json:"verify_link"`
}

func Stub() Result {
	return Result{Nearest: []Stop{}, VerifyLink: verifyLink}
}

var ErrCoordsRequired = errors.New("lat/lng required")

// Client talks to the PTV timetable v3 API using its signed-request scheme.
type Client struct {
	baseURL string
	devID   string
	key     string
	http    *retryablehttp.Client
	log     *slog.Logger
}

func NewClient(devID, key string, log *slog.Logger) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = 900 * time.Millisecond
	rc.RetryMax = 3
	rc.HTTPClient.Timeout = 6 * time.Second
	rc.Logger = nil
	if log == nil {
		log = slog.Default()
	}

	return &Client{
		baseURL: "https://timetableapi.ptv.vic.gov.au",
		devID:   devID,
		key:     key,
		http:    rc,
		log:     log,
	}
}

func (c *Client) configured() bool { return c.devID != "" && c.key != "" }

// Nearest finds stops within 500m (up to 10), enriches the closest 5 with
// their next 3 departures, and degrades to the safe stub on any upstream
// failure. A stop with no upcoming departures is valid, not an error.
func (c *Client) Nearest(ctx context.Context, lat, lng float64) (Result, error) {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return Result{}, ErrCoordsRequired
	}
	if !c.configured() {
		return Stub(), nil
	}

	stops, err := c.stopsNear(ctx, lat, lng)
	if err != nil {
		c.log.Warn("ptv stops lookup failed", "error", err)
		return Stub(), nil
	}

	if len(stops) > maxStopsEnrich {
		stops = stops[:maxStopsEnrich]
	}
	for i := range stops {
		deps, err := c.departures(ctx, stops[i].RouteType, stops[i].StopID)
		if err != nil {
			// "no upcoming departures" presentation, not a hard failure
			c.log.Warn("ptv departures fetch failed", "stop_id", stops[i].StopID, "error", err)
			deps = []Departure{}
		}
		stops[i].Departures = deps
	}
	return Result{Nearest: stops, VerifyLink: verifyLink}, nil
}

func (c *Client) get(ctx context.Context, pathAndQuery string, out any) error {
	u := c.baseURL + SignPath(pathAndQuery, c.devID, c.key)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("ptv HTTP %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) stopsNear(ctx context.Context, lat, lng float64) ([]Stop, error) {
	path := fmt.Sprintf("/v3/stops/location/%.6f,%.6f?max_distance=%d&max_results=%d",
		lat, lng, searchRadiusM, maxStopsFound)

	var body struct {
		Stops []struct {
			StopID       int     `json:"stop_id"`
			StopName     string  `json:"stop_name"`
			StopSuburb   string  `json:"stop_suburb"`
			RouteType    int     `json:"route_type"`
			StopDistance float64 `json:"stop_distance"`
		} `json:"stops"`
	}
	if err := c.get(ctx, path, &body); err != nil {
		return nil, err
	}

	out := make([]Stop, 0, len(body.Stops))
	for _, s := range body.Stops {
		out = append(out, Stop{
			StopID:     s.StopID,
			StopName:   s.StopName,
			StopSuburb: s.StopSuburb,
			RouteType:  s.RouteType,
			DistanceM:  int(math.Round(s.StopDistance)),
			Departures: []Departure{},
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DistanceM < out[j].DistanceM })
	return out, nil
}

func (c *Client) departures(ctx context.Context, routeType, stopID int) ([]Departure, error) {
	path := fmt.Sprintf("/v3/departures/route_type/%d/stop/%d?max_results=%d&expand=route&expand=direction",
		routeType, stopID, maxDepartures)

	var body struct {
		Departures []struct {
			RouteID      int    `json:"route_id"`
			DirectionID  int    `json:"direction_id"`
			ScheduledUTC string `json:"scheduled_departure_utc"`
			EstimatedUTC string `json:"estimated_departure_utc"`
		} `json:"departures"`
		Routes map[string]struct {
			RouteNumber string `json:"route_number"`
			RouteName   string `json:"route_name"`
		} `json:"routes"`
		Directions map[string]struct {
			DirectionName string `json:"direction_name"`
		} `json:"directions"`
	}
	if err := c.get(ctx, path, &body); err != nil {
		return nil, err
	}

	out := make([]Departure, 0, len(body.Departures))
	for _, d := range body.Departures {
		route := body.Routes[fmt.Sprint(d.RouteID)]
		number := route.RouteNumber
		if number == "" {
			number = route.RouteName
		}
		out = append(out, Departure{
			RouteNumber:   number,
			Direction:     body.Directions[fmt.Sprint(d.DirectionID)].DirectionName,
			ScheduledTime: d.ScheduledUTC,
			EstimatedTime: d.EstimatedUTC,
		})
	}
	// sort by best-known time, estimated over scheduled, soonest first
	sort.Slice(out, func(i, j int) bool { return bestTime(out[i]) < bestTime(out[j]) })
	if len(out) > maxDepartures {
		out = out[:maxDepartures]
	}
	return out, nil
}

func bestTime(d Departure) string {
	if d.EstimatedTime != "" {
		return d.EstimatedTime
	}
	return d.ScheduledTime
}
