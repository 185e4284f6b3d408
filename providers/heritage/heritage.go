package heritage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/yourorg/listings-api/internal/fetchcache"
)

const (
	Disclaimer = "Heritage listings can exist at state and local levels. Verify via Victorian Heritage Database and Council."
	verifyLink = "https://heritage-list.planning.vic.gov.au/"

	defaultRadiusM = 200
)

type Record struct {
	Name     string `json:"name"`
	Number   string `json:"number,omitempty"`
	Category string `json:"category,omitempty"`
	URL      string `json:"url,omitempty"`
}

type Result struct {
	Records    []Record `json:"records"`
	VerifyLink string   `json:"verify_link"`
}

func Stub() Result {
	return Result{Records: []Record{}, VerifyLink: verifyLink}
}

var ErrCoordsRequired = errors.New("lat/lng required")

// Client queries a heritage register endpoint near a point. The system never
// fabricates heritage status: unconfigured or failing upstream yields the
// stub with the manual-verification link.
type Client struct {
	endpoint string
	http     *retryablehttp.Client
	cache    *fetchcache.Cache
	log      *slog.Logger
}

func NewClient(endpoint string, cache *fetchcache.Cache, log *slog.Logger) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = 900 * time.Millisecond
	rc.RetryMax = 3
	rc.HTTPClient.Timeout = 6 * time.Second
	rc.Logger = nil
	if log == nil {
		log = slog.Default()
	}
	return &Client{endpoint: endpoint, http: rc, cache: cache, log: log}
}

// Lookup returns heritage records within 200m of the point.
func (c *Client) Lookup(ctx context.Context, lat, lng float64) (Result, error) {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return Result{}, ErrCoordsRequired
	}
	if c.endpoint == "" {
		return Stub(), nil
	}

	cacheKey := fetchcache.GeoKey("heritage", lat, lng, "")
	if payload, _, ok := c.cache.Get(ctx, cacheKey); ok {
		var r Result
		if err := json.Unmarshal(payload, &r); err == nil {
			return r, nil
		}
	}

	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%.6f", lat))
	q.Set("lng", fmt.Sprintf("%.6f", lng))
	q.Set("radius_m", fmt.Sprintf("%d", defaultRadiusM))
	u := c.endpoint + "?" + q.Encode()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Stub(), nil
	}
	req.Header.Set("accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("heritage lookup failed", "error", err)
		return Stub(), nil
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		c.log.Warn("heritage lookup failed", "status", resp.StatusCode)
		return Stub(), nil
	}

	var body struct {
		Records []struct {
			Name         string `json:"name"`
			VHRNumber    string `json:"vhr_number"`
			HeritageType string `json:"heritage_type"`
			DetailURL    string `json:"detail_url"`
		} `json:"records"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.log.Warn("heritage payload malformed", "error", err)
		return Stub(), nil
	}

	records := make([]Record, 0, len(body.Records))
	for _, r := range body.Records {
		records = append(records, Record{
			Name:     r.Name,
			Number:   r.VHRNumber,
			Category: r.HeritageType,
			URL:      r.DetailURL,
		})
	}
	res := Result{Records: records, VerifyLink: verifyLink}
	if b, err := json.Marshal(res); err == nil {
		c.cache.Put(ctx, cacheKey, b, "")
	}
	return res, nil
}
