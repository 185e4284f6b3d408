package planning

import (
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
	Disclaimer = "Planning controls may change. Verify via VicPlan/Council."
	verifyLink = "https://mapshare.vic.gov.au/vicplan/"
)

type Result struct {
	Zone       string   `json:"zone,omitempty"`
	Overlays   []string `json:"overlays"`
	VerifyLink string   `json:"verify_link"`
}

func Stub() Result {
	return Result{Overlays: []string{}, VerifyLink: verifyLink}
}

var ErrCoordsRequired = errors.New("lat/lng required")

// Client resolves the planning zone and overlay codes at a point via a WFS
// endpoint. Unconfigured or failing upstream yields the stub.
type Client struct {
	wfsURL string
	http   *retryablehttp.Client
	cache  *fetchcache.Cache
	log    *slog.Logger
}

func NewClient(wfsURL string, cache *fetchcache.Cache, log *slog.Logger) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = 900 * time.Millisecond
	rc.RetryMax = 3
	rc.HTTPClient.Timeout = 6 * time.Second
	rc.Logger = nil
	if log == nil {
		log = slog.Default()
	}
	return &Client{wfsURL: wfsURL, http: rc, cache: cache, log: log}
}

// Overlays queries the zone and overlay layers intersecting the point.
func (c *Client) Overlays(ctx context.Context, lat, lng float64) (Result, error) {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return Result{}, ErrCoordsRequired
	}
	if c.wfsURL == "" {
		return Stub(), nil
	}

	cacheKey := fetchcache.GeoKey("planning", lat, lng, "")
	if payload, _, ok := c.cache.Get(ctx, cacheKey); ok {
		var r Result
		if err := json.Unmarshal(payload, &r); err == nil {
			return r, nil
		}
	}

	zones, err := c.features(ctx, "plan_zone", lat, lng)
	if err != nil {
		c.log.Warn("planning zone query failed", "error", err)
		return Stub(), nil
	}
	overlayFeats, err := c.features(ctx, "plan_overlay", lat, lng)
	if err != nil {
		c.log.Warn("planning overlay query failed", "error", err)
		return Stub(), nil
	}

	res := Result{Overlays: []string{}, VerifyLink: verifyLink}
	if len(zones) > 0 {
		res.Zone = zones[0]
	}
	seen := map[string]bool{}
	for _, code := range overlayFeats {
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		res.Overlays = append(res.Overlays, code)
	}

	if b, err := json.Marshal(res); err == nil {
		c.cache.Put(ctx, cacheKey, b, "")
	}
	return res, nil
}

// features runs a WFS GetFeature point-intersection query against one layer
// and returns the scheme codes of matching features.
func (c *Client) features(ctx context.Context, layer string, lat, lng float64) ([]string, error) {
	q := url.Values{}
	q.Set("service", "WFS")
	q.Set("version", "2.0.0")
	q.Set("request", "GetFeature")
	q.Set("typeNames", layer)
	q.Set("outputFormat", "application/json")
	q.Set("cql_filter", fmt.Sprintf("INTERSECTS(geometry,POINT(%.6f %.6f))", lng, lat))

	sep := "?"
	if strings.Contains(c.wfsURL, "?") {
		sep = "&"
	}
	u := c.wfsURL + sep + q.Encode()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("wfs HTTP %d", resp.StatusCode)
	}

	var body struct {
		Features []struct {
			Properties struct {
				SchemeCode string `json:"scheme_code"`
				ZoneCode   string `json:"zone_code"`
			} `json:"properties"`
		} `json:"features"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(body.Features))
	for _, f := range body.Features {
		code := f.Properties.SchemeCode
		if code == "" {
			code = f.Properties.ZoneCode
		}
		out = append(out, code)
	}
	return out, nil
}
