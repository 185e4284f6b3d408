package places

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/yourorg/listings-api/internal/fetchcache"
)

const (
	maxPerCategory = 5
	defaultRadiusM = 800
)

// Place is one point of interest, tagged with the category that found it.
type Place struct {
	Type        string `json:"type"`
	DisplayName struct {
		Text string `json:"text"`
	} `json:"displayName"`
	Location struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location"`
}

type Result struct {
	Places []Place `json:"places"`
}

func Stub() Result { return Result{Places: []Place{}} }

var ErrCoordsRequired = errors.New("lat/lng required")

// Client queries one of two POI providers: the paid Google Places API when a
// key is configured, otherwise open Overpass data. Categories are queried
// independently and merged into one flat list; results are NOT de-duplicated
// across overlapping categories.
type Client struct {
	provider    string // "google" or "overpass"
	googleKey   string
	googleURL   string
	overpassURL string
	http        *retryablehttp.Client
	cache       *fetchcache.Cache
	log         *slog.Logger
}

func NewClient(provider, googleKey, overpassURL string, cache *fetchcache.Cache, log *slog.Logger) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = 900 * time.Millisecond
	rc.RetryMax = 3
	rc.HTTPClient.Timeout = 6 * time.Second
	rc.Logger = nil
	if provider == "" {
		provider = "overpass"
	}
	if overpassURL == "" {
		overpassURL = "https://overpass-api.de/api/interpreter"
	}
	if log == nil {
		log = slog.Default()
	}

	return &Client{
		provider:    strings.ToLower(provider),
		googleKey:   googleKey,
		googleURL:   "https://places.googleapis.com/v1/places:searchNearby",
		overpassURL: overpassURL,
		http:        rc,
		cache:       cache,
		log:         log,
	}
}

// Nearby queries each requested category and concatenates the results, at
// most 5 per category. A failing category is skipped, not fatal.
func (c *Client) Nearby(ctx context.Context, lat, lng float64, types []string, radiusM int) (Result, error) {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return Result{}, ErrCoordsRequired
	}
	if len(types) == 0 {
		types = []string{"cafe"}
	}
	if radiusM <= 0 {
		radiusM = defaultRadiusM
	}

	cacheKey := fetchcache.GeoKey("places", lat, lng,
		fmt.Sprintf("%s:%d", strings.Join(types, ","), radiusM))
	if payload, _, ok := c.cache.Get(ctx, cacheKey); ok {
		var r Result
		if err := json.Unmarshal(payload, &r); err == nil {
			return r, nil
		}
	}

	useGoogle := c.provider == "google" && c.googleKey != ""
	results := []Place{}
	for _, t := range types {
		var found []Place
		var err error
		if useGoogle {
			found, err = c.googleCategory(ctx, lat, lng, t, radiusM)
		} else {
			found, err = c.overpassCategory(ctx, lat, lng, t, radiusM)
		}
		if err != nil {
			c.log.Warn("places category lookup failed", "category", t, "error", err)
			continue
		}
		results = append(results, found...)
	}

	r := Result{Places: results}
	if b, err := json.Marshal(r); err == nil {
		c.cache.Put(ctx, cacheKey, b, "")
	}
	return r, nil
}

func (c *Client) googleCategory(ctx context.Context, lat, lng float64, category string, radiusM int) ([]Place, error) {
	payload := map[string]any{
		"locationRestriction": map[string]any{
			"circle": map[string]any{
				"center": map[string]float64{"latitude": lat, "longitude": lng},
				"radius": float64(radiusM),
			},
		},
		"includedTypes":  []string{category},
		"maxResultCount": maxPerCategory,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.googleURL, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.googleKey)
	req.Header.Set("X-Goog-FieldMask", "places.displayName,places.location")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("google places HTTP %d", resp.StatusCode)
	}

	var body struct {
		Places []Place `json:"places"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	out := body.Places
	if len(out) > maxPerCategory {
		out = out[:maxPerCategory]
	}
	for i := range out {
		out[i].Type = category
	}
	return out, nil
}

func overpassClause(category string) string {
	switch category {
	case "supermarket":
		return `["shop"="supermarket"]`
	case "restaurant":
		return `["amenity"="restaurant"]`
	case "park":
		return `["leisure"="park"]`
	case "beach":
		return `["natural"="beach"]`
	default:
		return `["amenity"="` + category + `"]`
	}
}

type overpassElement struct {
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Center *struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"center"`
	Tags map[string]string `json:"tags"`
}

func (c *Client) overpassCategory(ctx context.Context, lat, lng float64, category string, radiusM int) ([]Place, error) {
	q := fmt.Sprintf("[out:json][timeout:25];nwr(around:%d,%f,%f)%s;out center %d;",
		radiusM, lat, lng, overpassClause(category), maxPerCategory)
	form := "data=" + url.QueryEscape(q)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.overpassURL,
		strings.NewReader(form))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("overpass HTTP %d", resp.StatusCode)
	}

	var body struct {
		Elements []overpassElement `json:"elements"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	return mapOverpassElements(body.Elements, category), nil
}

// mapOverpassElements normalizes raw Overpass elements into tagged places,
// capped per category. Unnamed features fall back to the category label.
func mapOverpassElements(elements []overpassElement, category string) []Place {
	if len(elements) > maxPerCategory {
		elements = elements[:maxPerCategory]
	}
	out := make([]Place, 0, len(elements))
	for _, e := range elements {
		var p Place
		p.Type = category
		p.DisplayName.Text = category
		if name, ok := e.Tags["name"]; ok && name != "" {
			p.DisplayName.Text = name
		}
		if e.Center != nil {
			p.Location.Latitude = e.Center.Lat
			p.Location.Longitude = e.Center.Lon
		} else {
			p.Location.Latitude = e.Lat
			p.Location.Longitude = e.Lon
		}
		out = append(out, p)
	}
	return out
}

// Merge concatenates category-scoped result sets into one flat list. No
// de-duplication by place identity is performed; overlapping queries can
// yield the same place twice.
func Merge(results ...Result) Result {
	out := Result{Places: []Place{}}
	for _, r := range results {
		out.Places = append(out.Places, r.Places...)
	}
	return out
}
